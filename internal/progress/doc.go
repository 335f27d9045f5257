// Package progress renders a live multi-line view of a running download batch.
//
// A Reporter polls a downloader.BatchView on a ticker and redraws one line per
// started episode, followed by a summary once the batch is stopped.
package progress
