package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
)

// Sink writes each group bundle to <dir>/<group>-evidence.json.
type Sink struct {
	dir string
}

func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

func Path(dir, group string) string {
	return filepath.Join(dir, ObjectName(group))
}

func ObjectName(group string) string {
	return group + "-evidence.json"
}

// Encode renders a bundle as the evidence document shared by every sink.
func Encode(bundle *domain.EvidenceBundle) ([]byte, error) {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode evidence: %w", err)
	}
	return data, nil
}

func (s *Sink) Persist(ctx context.Context, group string, bundle *domain.EvidenceBundle) error {
	data, err := Encode(bundle)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := Path(s.dir, group)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move evidence into place: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("group", group).
		Str("path", path).
		Int("reports", bundle.Len()).
		Msg("evidence written")
	return nil
}
