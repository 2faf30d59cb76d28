package md2card

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAssetLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "styles", "dark.css"), []byte("/* dark */"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name     string
		basePath string
		style    string
		template string
		want     string
		wantErr  error
	}{
		{name: "embedded style", style: DefaultStyle, want: ".md2card"},
		{name: "embedded template", template: DefaultTemplate, want: "{{.Body}}"},
		{name: "custom style", basePath: dir, style: "dark", want: "/* dark */"},
		{name: "custom dir falls back", basePath: dir, style: DefaultStyle, want: ".md2card"},
		{name: "missing style", style: "missing", wantErr: ErrStyleNotFound},
		{name: "missing template", template: "missing", wantErr: ErrTemplateNotFound},
		{name: "bad base path", basePath: filepath.Join(dir, "nope"), wantErr: ErrInvalidAssetPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, err := NewAssetLoader(tt.basePath)
			if err == nil {
				if tt.style != "" {
					var got string
					got, err = loader.LoadStyle(tt.style)
					if err == nil && !strings.Contains(got, tt.want) {
						t.Errorf("LoadStyle() missing %q", tt.want)
					}
				} else {
					var got string
					got, err = loader.LoadTemplate(tt.template)
					if err == nil && !strings.Contains(got, tt.want) {
						t.Errorf("LoadTemplate() missing %q", tt.want)
					}
				}
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
		})
	}
}

func TestConvertAssetError_KeepsMessage(t *testing.T) {
	t.Parallel()

	loader, err := NewAssetLoader("")
	if err != nil {
		t.Fatalf("NewAssetLoader() error = %v", err)
	}
	_, err = loader.LoadStyle("ghost")
	if !errors.Is(err, ErrStyleNotFound) {
		t.Fatalf("LoadStyle() error = %v, want ErrStyleNotFound", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error message %q should name the style", err.Error())
	}
}
