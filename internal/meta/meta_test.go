package meta

import "testing"

func TestRecordAbsentVersusEmpty(t *testing.T) {
	rec := NewRecord()
	if rec.Has(FieldYear) {
		t.Fatalf("expected year absent")
	}
	rec.Set(FieldYear, "")
	v, ok := rec.Get(FieldYear)
	if !ok || v != "" {
		t.Fatalf("expected present empty year, got %q ok=%v", v, ok)
	}
	rec.Del(FieldYear)
	if rec.Has(FieldYear) {
		t.Fatalf("expected year absent after delete")
	}
}

func TestRecordFreeFormValues(t *testing.T) {
	rec := NewRecord()
	rec.Set(FieldYear, "c. 1996")
	rec.Set(FieldTrack, "3/12")
	if rec.Value(FieldYear) != "c. 1996" {
		t.Fatalf("year mangled: %q", rec.Value(FieldYear))
	}
	if rec.Value(FieldTrack) != "3/12" {
		t.Fatalf("track mangled: %q", rec.Value(FieldTrack))
	}
}

func TestDisplayTitleFallback(t *testing.T) {
	rec := NewRecord()
	if got := rec.DisplayTitle("/music/01 - Intro.mp3"); got != "01 - Intro" {
		t.Fatalf("stem fallback, got %q", got)
	}
	rec.Set(FieldTitle, "Intro")
	if got := rec.DisplayTitle("/music/01 - Intro.mp3"); got != "Intro" {
		t.Fatalf("stored title wins, got %q", got)
	}
	// fallback must not leak into the record
	rec.Del(FieldTitle)
	_ = rec.DisplayTitle("/music/01 - Intro.mp3")
	if rec.Has(FieldTitle) {
		t.Fatalf("display fallback was stored on the record")
	}
}

func TestRecordClone(t *testing.T) {
	rec := NewRecord()
	rec.Set(FieldArtist, "Artist")
	dup := rec.Clone()
	dup.Set(FieldArtist, "Other")
	if rec.Value(FieldArtist) != "Artist" {
		t.Fatalf("clone shares storage with original")
	}
}

func TestPatchHelpers(t *testing.T) {
	var p Patch
	if !p.IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
	p.SetField(FieldTitle, "New")
	p.ClearField(FieldGenre)
	p.SetLyrics("")
	if p.IsEmpty() {
		t.Fatalf("patch with writes should not be empty")
	}
	if v, ok := p.Fields[FieldGenre]; !ok || v != "" {
		t.Fatalf("clear marker missing")
	}
	if p.Lyrics == nil || *p.Lyrics != "" {
		t.Fatalf("lyrics clear marker missing")
	}
}
