package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fair-invitations/internal/guestlist"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%s failed: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestTemplateCommand(t *testing.T) {
	out := execute(t, "template", "--semicolon")

	doc, err := guestlist.Parse(out)
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if doc.Delimiter != guestlist.Semicolon || len(doc.Records) != 1 {
		t.Fatalf("unexpected template: %+v", doc)
	}

	path := filepath.Join(t.TempDir(), guestlist.TemplateFileName)
	execute(t, "template", path)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected template file: %v", err)
	}
}

func TestParseAndGuestsCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INVITES_DATA_DIR", filepath.Join(dir, "data"))

	list := filepath.Join(dir, "lista.csv")
	body := "adres-email,Imię i nazwisko gościa\njan@example.com,Jan Kowalski\nzly-email,Anna Nowak\n"
	if err := os.WriteFile(list, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write list: %v", err)
	}

	out := execute(t, "parse", list, "--dry-run")
	if !strings.Contains(out, "1 valid, 1 invalid") || strings.Contains(out, "Guest list loaded") {
		t.Fatalf("unexpected dry-run output:\n%s", out)
	}

	out = execute(t, "guests")
	if !strings.Contains(out, "No guests found.") {
		t.Fatalf("expected dry run to leave the session empty:\n%s", out)
	}

	out = execute(t, "parse", list, "--dry-run=false", "--exhibition", "expo-1")
	if !strings.Contains(out, "1 valid, 1 invalid") || !strings.Contains(out, "Guest list loaded") {
		t.Fatalf("unexpected parse output:\n%s", out)
	}

	out = execute(t, "guests", "--status", "error")
	if !strings.Contains(out, "Anna Nowak") || strings.Contains(out, "Jan Kowalski") {
		t.Fatalf("unexpected guests output:\n%s", out)
	}
	if !strings.Contains(out, guestlist.InvalidEmailMessage) {
		t.Fatalf("expected invalid email message:\n%s", out)
	}

	out = execute(t, "guests", "--row", "1")
	if !strings.Contains(out, "Jan Kowalski") || strings.Contains(out, "Anna Nowak") {
		t.Fatalf("unexpected single guest output:\n%s", out)
	}

	out = execute(t, "reset-failed")
	if !strings.Contains(out, "0 guest(s) reset") {
		t.Fatalf("expected invalid email rows to stay failed:\n%s", out)
	}
}
