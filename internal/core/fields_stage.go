package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/contracts-parser/constants"
	"github.com/joseph-ayodele/contracts-parser/internal/core/fields"
	"github.com/joseph-ayodele/contracts-parser/internal/entity"
	"github.com/joseph-ayodele/contracts-parser/internal/ner"
)

// FieldsConfig holds the section specs and the payment window size.
type FieldsConfig struct {
	Sections   map[string][]string // default constants.DefaultSectionPhrases
	WindowSize int                 // default constants.WindowSize
}

// FieldsStage mines a converted document: entities, work clauses and both payments.
type FieldsStage struct {
	Recognizer ner.Recognizer
	Logger     *slog.Logger

	initial    *fields.Section
	second     *fields.Section
	windowSize int
}

func NewFieldsStage(rec ner.Recognizer, cfg FieldsConfig, logger *slog.Logger) (*FieldsStage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		return nil, fmt.Errorf("fields stage: recognizer is required")
	}
	if cfg.Sections == nil {
		cfg.Sections = constants.DefaultSectionPhrases
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = constants.WindowSize
	}
	initial, err := fields.NewSection(constants.SectionInitialPayment, cfg.Sections[constants.SectionInitialPayment])
	if err != nil {
		return nil, err
	}
	second, err := fields.NewSection(constants.SectionSecondPayment, cfg.Sections[constants.SectionSecondPayment])
	if err != nil {
		return nil, err
	}
	return &FieldsStage{
		Recognizer: rec,
		Logger:     logger,
		initial:    initial,
		second:     second,
		windowSize: cfg.WindowSize,
	}, nil
}

// Run builds the record for filename from its text. Any error is an extraction failure.
func (s *FieldsStage) Run(ctx context.Context, filename, text string) (entity.Record, error) {
	ents, err := s.Recognizer.Recognize(ctx, text)
	if err != nil {
		return entity.Record{}, fmt.Errorf("recognize entities: %w", err)
	}
	name, hasName := ner.First(ents, ner.KindPerson)
	date, hasDate := ner.First(ents, ner.KindDate)

	rec := entity.Record{
		Filename:       filename,
		Name:           entity.StringPtr(name, hasName),
		Date:           entity.StringPtr(date, hasDate),
		Work:           fields.WorkClauses(text),
		InitialPayment: entity.StringPtr(fields.SectionPayment(text, s.initial, s.windowSize)),
		SecondPayment:  entity.StringPtr(fields.SectionPayment(text, s.second, s.windowSize)),
	}
	s.Logger.Debug("processor.fields.ok",
		"filename", filename,
		"entities", len(ents),
		"has_name", hasName,
		"has_date", hasDate,
		"work_clauses", len(rec.Work),
		"has_initial_payment", rec.InitialPayment != nil,
		"has_second_payment", rec.SecondPayment != nil,
	)
	return rec, nil
}
