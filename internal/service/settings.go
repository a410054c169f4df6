package service

import "github.com/lshigami/formkit/config"

// Settings are the configuration values services read.
type Settings struct {
	PublicBaseURL              string
	ExportBatchSize            int
	DeletedOptionPlaceholder   string
	MalformedAnswerPlaceholder string
}

func NewSettings(cfg *config.Config) Settings {
	s := Settings{
		PublicBaseURL:              cfg.Server.PublicBaseURL,
		ExportBatchSize:            cfg.Export.BatchSize,
		DeletedOptionPlaceholder:   cfg.Export.DeletedOptionPlaceholder,
		MalformedAnswerPlaceholder: cfg.Export.MalformedAnswerPlaceholder,
	}
	return s.withDefaults()
}

func (s Settings) withDefaults() Settings {
	if s.ExportBatchSize <= 0 {
		s.ExportBatchSize = 200
	}
	if s.DeletedOptionPlaceholder == "" {
		s.DeletedOptionPlaceholder = "[deleted option]"
	}
	if s.MalformedAnswerPlaceholder == "" {
		s.MalformedAnswerPlaceholder = "[malformed answer]"
	}
	return s
}
