// ABOUTME: Shared helpers for CLI commands
// ABOUTME: Confirmation prompts and resolving a field from an id, id prefix or name

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
)

// confirm asks a yes/no question on in and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", prompt)
	reader := bufio.NewReader(in)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// resolveField finds one of the user's fields by exact id, unique id prefix
// or case-insensitive name.
func resolveField(ctx context.Context, userID, ref string) (*models.Field, error) {
	if ref == "" {
		return nil, fmt.Errorf("field id or name is required")
	}

	fields, err := repo.ListFields(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}

	var byPrefix, byName []*models.Field
	for _, f := range fields {
		if f.ID == ref {
			return f, nil
		}
		if strings.HasPrefix(f.ID, ref) {
			byPrefix = append(byPrefix, f)
		}
		if strings.EqualFold(f.Name, ref) {
			byName = append(byName, f)
		}
	}

	for _, matches := range [][]*models.Field{byPrefix, byName} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return nil, fmt.Errorf("%q matches %d fields, use a longer id", ref, len(matches))
		}
	}
	return nil, fmt.Errorf("field %q: %w", ref, storage.ErrNotFound)
}

// shortID is the id prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
