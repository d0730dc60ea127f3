// ABOUTME: Tests for YAML backup and markdown export
// ABOUTME: Round-trips fields through a backup and checks format validation

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/harper/cropfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func seedFields(t *testing.T, repo Repository) []*models.Field {
	t.Helper()
	ctx := context.Background()
	fields := []*models.Field{
		{ID: "f1", Name: "lower terrace", Center: models.NewCoordinate(1, 1), Boundary: triangle, CreatedAt: 1000},
		{ID: "f2", Name: "orchard", Center: models.NewCoordinate(2, 2), Boundary: triangle, CreatedAt: 2000, IsFavorite: true},
	}
	for _, f := range fields {
		require.NoError(t, repo.ImportField(ctx, testUser, f))
	}
	return fields
}

func TestExportToYAML(t *testing.T) {
	db := testDB(t)
	seedFields(t, db)

	data, err := ExportToYAML(context.Background(), db, testUser)
	require.NoError(t, err)

	var backup Backup
	require.NoError(t, yaml.Unmarshal(data, &backup))
	assert.Equal(t, BackupVersion, backup.Version)
	assert.Equal(t, "cropfit", backup.Tool)
	assert.Equal(t, testUser, backup.UserID)
	require.Len(t, backup.Fields, 2)
	assert.Equal(t, "f1", backup.Fields[0].ID)
	assert.Len(t, backup.Fields[0].Points, 3)
	assert.True(t, backup.Fields[1].Favourite)
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := testDB(t)
	want := seedFields(t, src)

	backup, err := NewBackup(ctx, src, testUser)
	require.NoError(t, err)
	require.Len(t, backup.Fields, 2)
	data, err := backup.Encode()
	require.NoError(t, err)

	dst := testDB(t)
	n, err := ImportFromYAML(ctx, dst, "other-user", data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := dst.ListFields(ctx, "other-user")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestImportFromYAML_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad_yaml", "version: [", "parse yaml"},
		{"wrong_version", "version: \"2.0\"\ntool: cropfit\n", "unsupported backup version"},
		{"wrong_tool", "version: \"1.0\"\ntool: position\n", "wrong tool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			_, err := ImportFromYAML(context.Background(), db, testUser, []byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportFromYAML_RequiresUser(t *testing.T) {
	db := testDB(t)
	data := "version: \"1.0\"\ntool: cropfit\nfields:\n  - id: a\n    name: a\n"
	_, err := ImportFromYAML(context.Background(), db, "", []byte(data))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestExportToMarkdown(t *testing.T) {
	db := testDB(t)
	seedFields(t, db)

	data, err := ExportToMarkdown(context.Background(), db, testUser)
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "# Field Export - "))
	assert.Contains(t, out, "| lower terrace | (1.00000, 1.00000) | 3 |")
	assert.Contains(t, out, "★")
}

func TestExportToMarkdown_Empty(t *testing.T) {
	db := testDB(t)
	data, err := ExportToMarkdown(context.Background(), db, testUser)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No fields recorded.")
}
