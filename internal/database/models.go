package database

import "github.com/NikitaDmitryuk/ani-dl/internal/models"

type BatchRecord = models.BatchRecord
type EpisodeRecord = models.EpisodeRecord
type EpisodeState = models.EpisodeState

const (
	EpisodeSucceeded = models.EpisodeSucceeded
	EpisodeFailed    = models.EpisodeFailed
)
