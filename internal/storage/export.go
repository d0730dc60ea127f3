// ABOUTME: Export and import functionality for field data
// ABOUTME: Supports YAML backup format and markdown export

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harper/cropfit/internal/models"
	"gopkg.in/yaml.v3"
)

// BackupVersion is the current backup format version.
const BackupVersion = "1.0"

// backupTool identifies backups written by this program.
const backupTool = "cropfit"

// Backup represents the YAML backup format.
type Backup struct {
	Version    string        `yaml:"version"`
	ExportedAt time.Time     `yaml:"exported_at"`
	Tool       string        `yaml:"tool"`
	UserID     string        `yaml:"user_id"`
	Fields     []FieldBackup `yaml:"fields"`
}

// FieldBackup represents a field in the backup format.
type FieldBackup struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	Center    PointBackup   `yaml:"center"`
	Points    []PointBackup `yaml:"points"`
	Timestamp int64         `yaml:"timestamp"`
	Favourite bool          `yaml:"favourite,omitempty"`
}

// PointBackup is a coordinate in the backup format.
type PointBackup struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// NewBackup snapshots all fields of the user.
func NewBackup(ctx context.Context, repo Repository, userID string) (*Backup, error) {
	fields, err := repo.ListFields(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	backup := &Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       backupTool,
		UserID:     userID,
		Fields:     make([]FieldBackup, len(fields)),
	}

	for i, f := range fields {
		fb := FieldBackup{
			ID:        f.ID,
			Name:      f.Name,
			Center:    PointBackup{Lat: f.Center.Latitude, Lng: f.Center.Longitude},
			Points:    make([]PointBackup, len(f.Boundary)),
			Timestamp: f.CreatedAt,
			Favourite: f.IsFavorite,
		}
		for j, p := range f.Boundary {
			fb.Points[j] = PointBackup{Lat: p.Latitude, Lng: p.Longitude}
		}
		backup.Fields[i] = fb
	}

	return backup, nil
}

// Encode renders the backup as YAML.
func (b *Backup) Encode() ([]byte, error) {
	return yaml.Marshal(b)
}

// ExportToYAML exports all fields of the user to YAML format.
func ExportToYAML(ctx context.Context, repo Repository, userID string) ([]byte, error) {
	backup, err := NewBackup(ctx, repo, userID)
	if err != nil {
		return nil, err
	}
	return backup.Encode()
}

// ParseBackup decodes and checks a YAML backup without writing anything.
func ParseBackup(data []byte) (*Backup, error) {
	var backup Backup
	if err := yaml.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version: %s (expected %s)", backup.Version, BackupVersion)
	}

	if backup.Tool != backupTool {
		return nil, fmt.Errorf("wrong tool: %s (expected %s)", backup.Tool, backupTool)
	}

	return &backup, nil
}

// Restore writes the backed-up fields into the user's store, keeping ids and
// timestamps. Returns the number of fields written.
func (b *Backup) Restore(ctx context.Context, repo Repository, userID string) (int, error) {
	if err := RequireUser(userID); err != nil {
		return 0, err
	}

	for i, fb := range b.Fields {
		field := &models.Field{
			ID:         fb.ID,
			Name:       fb.Name,
			Center:     models.NewCoordinate(fb.Center.Lat, fb.Center.Lng),
			Boundary:   make([]models.Coordinate, len(fb.Points)),
			CreatedAt:  fb.Timestamp,
			IsFavorite: fb.Favourite,
		}
		for j, p := range fb.Points {
			field.Boundary[j] = models.NewCoordinate(p.Lat, p.Lng)
		}

		if err := repo.ImportField(ctx, userID, field); err != nil {
			return i, fmt.Errorf("import field %q: %w", fb.Name, err)
		}
	}

	return len(b.Fields), nil
}

// ImportFromYAML restores a YAML backup into the user's store.
func ImportFromYAML(ctx context.Context, repo Repository, userID string, data []byte) (int, error) {
	backup, err := ParseBackup(data)
	if err != nil {
		return 0, err
	}
	return backup.Restore(ctx, repo, userID)
}

// ExportToMarkdown renders the user's fields as a markdown report.
func ExportToMarkdown(ctx context.Context, repo Repository, userID string) ([]byte, error) {
	fields, err := repo.ListFields(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	var sb strings.Builder

	now := time.Now().UTC()
	sb.WriteString(fmt.Sprintf("# Field Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(fields) == 0 {
		sb.WriteString("No fields recorded.\n")
		return []byte(sb.String()), nil
	}

	sb.WriteString("| Name | Center | Points | Created | Favourite |\n")
	sb.WriteString("|------|--------|--------|---------|-----------|\n")

	for _, f := range fields {
		fav := ""
		if f.IsFavorite {
			fav = "★"
		}
		sb.WriteString(fmt.Sprintf("| %s | (%.5f, %.5f) | %d | %s | %s |\n",
			f.Name, f.Center.Latitude, f.Center.Longitude, len(f.Boundary),
			f.Created().UTC().Format("2006-01-02 15:04"), fav))
	}

	return []byte(sb.String()), nil
}
