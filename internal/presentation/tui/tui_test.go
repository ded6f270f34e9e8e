package tui

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintBanner_PlainWriter(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "shipment assistant")

	out := buf.String()
	if !strings.Contains(out, "shipment assistant") {
		t.Errorf("subtitle missing from %q", out)
	}
	if !strings.Contains(out, "|___/") {
		t.Errorf("banner art missing from %q", out)
	}
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out, err := render("**Summary:** parcels")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "parcels") {
		t.Errorf("rendered output lost text: %q", out)
	}
}
