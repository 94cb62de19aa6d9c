// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"
)

// Image describes an uploaded image file. The file itself lives in the
// configured storage backend; nothing about it is kept in the catalog.
type Image struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"type"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	OriginalName string    `json:"originalName,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// IsImage returns true if the content type is an image type.
func (m *Image) IsImage() bool {
	return strings.HasPrefix(m.ContentType, "image/")
}

// HumanSize returns a human-readable file size string.
func (m *Image) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case m.Size >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.Size)/float64(mb))
	case m.Size >= kb:
		return fmt.Sprintf("%.0f KB", float64(m.Size)/float64(kb))
	default:
		return fmt.Sprintf("%d B", m.Size)
	}
}
