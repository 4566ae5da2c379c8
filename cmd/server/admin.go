package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Simplici0/tenderpricing/internal/observability"
	"github.com/Simplici0/tenderpricing/internal/pricing"
	"github.com/Simplici0/tenderpricing/internal/tools"
)

func (s *server) handleAdminPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.store.Presets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

// handleAdminPresetsSave accepts a partial table keyed by strategy. Every
// entry is checked before any is written.
func (s *server) handleAdminPresetsSave(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body map[string]pricing.Preset
	if err := json.Unmarshal(data, &body); err != nil {
		s.writeError(w, r, &tools.ArgumentError{Err: err})
		return
	}

	updates := make(map[pricing.Strategy]pricing.Preset, len(body))
	for name, p := range body {
		strategy, err := pricing.ParseStrategy(name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := pricing.ValidatePreset(strategy, p); err != nil {
			s.writeError(w, r, err)
			return
		}
		updates[strategy] = p
	}

	for _, strategy := range pricing.Strategies {
		p, ok := updates[strategy]
		if !ok {
			continue
		}
		if err := s.store.SavePreset(r.Context(), strategy, p); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.configUpdated(r.Context(), "presets", len(updates))

	s.handleAdminPresets(w, r)
}

func (s *server) handleAdminDefaults(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.store.Defaults(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, defaults)
}

// handleAdminDefaultsSave overlays the supplied fields on the stored defaults.
func (s *server) handleAdminDefaultsSave(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rates, err := tools.DecodeRateArgs(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	current, err := s.store.Defaults(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SaveDefaults(r.Context(), rates.Over(current)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.configUpdated(r.Context(), "defaults", 1)

	s.handleAdminDefaults(w, r)
}

func (s *server) configUpdated(ctx context.Context, section string, changes int) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      observability.EventConfigUpdated,
		Level:     slog.LevelInfo,
		Timestamp: time.Now(),
		Operation: "admin_" + section,
		Data:      map[string]any{"changes": changes},
	})
}
