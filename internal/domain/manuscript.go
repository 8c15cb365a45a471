package domain

import (
	"errors"
	"time"
)

// Manuscript is decoded manuscript text plus where it came from.
type Manuscript struct {
	Name   string
	Format string
	Text   string
}

// Report wraps a verdict with per-run metadata. It is never persisted.
type Report struct {
	ID         string        `json:"id"`
	Manuscript string        `json:"manuscript"`
	Format     string        `json:"format,omitempty"`
	Topics     []string      `json:"topics,omitempty"`
	Verdict    Verdict       `json:"verdict"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"durationNs"`
}

// CheckInfo describes one declared check for listings.
type CheckInfo struct {
	Name     string `json:"name"`
	Step     int    `json:"step"`
	Critical bool   `json:"critical"`
	Custom   bool   `json:"custom"`
}

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmptyManuscript   = errors.New("manuscript text is empty")
	ErrInputTooLarge     = errors.New("manuscript exceeds size limit")
)
