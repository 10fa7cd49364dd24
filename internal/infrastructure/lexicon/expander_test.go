package lexicon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandKeepsOriginalAsVariantZero(t *testing.T) {
	e := New()

	set, err := e.Expand(context.Background(), "how much time off do I get", 4)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if set.Original != "how much time off do I get" {
		t.Fatalf("unexpected original: %q", set.Original)
	}
	if set.Variants[0] != set.Original {
		t.Fatalf("variant 0 must be the original, got %q", set.Variants[0])
	}
	if len(set.Variants) < 2 {
		t.Fatalf("expected synonym variants for 'time off', got %v", set.Variants)
	}
	found := false
	for _, v := range set.Variants[1:] {
		if strings.Contains(v, "vacation") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a vacation variant, got %v", set.Variants)
	}
}

func TestExpandCapsVariants(t *testing.T) {
	e := New()

	set, err := e.Expand(context.Background(), "time off policy setup", 3)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(set.Variants) > 3 {
		t.Fatalf("expected at most 3 variants, got %d", len(set.Variants))
	}
}

func TestExpandDeduplicatesVariants(t *testing.T) {
	e := New()

	set, err := e.Expand(context.Background(), "vpn vpn", 6)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	seen := map[string]struct{}{}
	for _, v := range set.Variants {
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate variant %q in %v", v, set.Variants)
		}
		seen[key] = struct{}{}
	}
}

func TestExpandRequiresWholePhrase(t *testing.T) {
	e := New()

	// "pto" must not match inside "laptop"; "laptop" itself may expand
	set, err := e.Expand(context.Background(), "broken keyboard", 4)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(set.Variants) != 1 {
		t.Fatalf("no lexicon phrase present, expected only the original, got %v", set.Variants)
	}
}

func TestExpandNoMatchReturnsOriginalOnly(t *testing.T) {
	e := New()

	set, err := e.Expand(context.Background(), "quarterly revenue figures", 4)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(set.Variants) != 1 || set.Variants[0] != "quarterly revenue figures" {
		t.Fatalf("expected original only, got %v", set.Variants)
	}
}

func TestNewFromFileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := "badge: [access card]\nvpn: [tunnel]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}

	e, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}

	set, err := e.Expand(context.Background(), "badge request", 4)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(set.Variants) != 2 || !strings.Contains(set.Variants[1], "access card") {
		t.Fatalf("expected file-provided synonym, got %v", set.Variants)
	}

	vpn, err := e.Expand(context.Background(), "vpn help", 4)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(vpn.Variants) != 2 || !strings.Contains(vpn.Variants[1], "tunnel") {
		t.Fatalf("file entry must override default, got %v", vpn.Variants)
	}
}

func TestNewFromFileMissingFile(t *testing.T) {
	if _, err := NewFromFile("/nonexistent/lexicon.yaml"); err == nil {
		t.Fatalf("expected error for missing lexicon file")
	}
}
