package models

import "time"

// BatchRecord is one finished download batch.
type BatchRecord struct {
	ID         string          `json:"id"          gorm:"primaryKey;type:text"`
	Title      string          `json:"title"       gorm:"not null;index"`
	Dir        string          `json:"dir"         gorm:"not null"`
	Total      int             `json:"total"       gorm:"not null;default:0"`
	Completed  int             `json:"completed"   gorm:"not null;default:0"`
	StartedAt  time.Time       `json:"started_at"  gorm:"not null"`
	FinishedAt time.Time       `json:"finished_at" gorm:"not null;index"`
	Episodes   []EpisodeRecord `json:"episodes"    gorm:"foreignKey:BatchID"`
	CreatedAt  time.Time       `json:"created_at"  gorm:"autoCreateTime"`
}

func (b BatchRecord) Failed() int {
	return b.Total - b.Completed
}

func (b BatchRecord) Duration() time.Duration {
	return b.FinishedAt.Sub(b.StartedAt)
}

// EpisodeRecord is the terminal state of one episode in a batch.
type EpisodeRecord struct {
	ID      uint         `json:"id"       gorm:"primaryKey"`
	BatchID string       `json:"batch_id" gorm:"not null;index;constraint:OnDelete:CASCADE;"`
	Index   int          `json:"index"    gorm:"column:episode_index;not null"`
	Source  string       `json:"source"   gorm:"not null"`
	State   EpisodeState `json:"state"    gorm:"not null"`
	Reason  string       `json:"reason"   gorm:"not null;default:''"`
}

// Number is the 1-based episode number.
func (e EpisodeRecord) Number() int {
	return e.Index + 1
}

type EpisodeState string

const (
	EpisodeSucceeded EpisodeState = "succeeded"
	EpisodeFailed    EpisodeState = "failed"
)

func (s EpisodeState) String() string {
	return string(s)
}

func (s EpisodeState) IsValid() bool {
	switch s {
	case EpisodeSucceeded, EpisodeFailed:
		return true
	default:
		return false
	}
}
