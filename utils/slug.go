package utils

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const maxSlugAttempts = 100

// UniqueSlug turns name into a URL slug and appends -2, -3, ... until exists reports the
// candidate as free.
func UniqueSlug(ctx context.Context, name string, exists func(ctx context.Context, slug string) (bool, error)) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = uuid.New().String()[:8]
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	// Pathological collision run; fall back to a random suffix.
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8]), nil
}
