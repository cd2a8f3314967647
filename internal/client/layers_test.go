package client

import (
	"testing"

	"github.com/anant1857/canvaschat/internal/canvas"
)

func TestLayerSetStartsOnShared(t *testing.T) {
	ls := NewLayerSet()
	if ls.Active() != LayerShared || !ls.SharedActive() {
		t.Fatalf("new layer set active = %q, want %q", ls.Active(), LayerShared)
	}
}

func TestSetActiveRejectsUnknownAndNoop(t *testing.T) {
	ls := NewLayerSet()

	if ls.SetActive("bogus") {
		t.Fatal("unknown layer name accepted")
	}
	if ls.SetActive(LayerShared) {
		t.Fatal("switching to the already active layer reported a change")
	}
	if !ls.SetActive(LayerPrivate) {
		t.Fatal("switch to private rejected")
	}
	if ls.SharedActive() {
		t.Fatal("still on shared after switch")
	}
}

func TestDrawActiveMarksOnlyPrivateDirty(t *testing.T) {
	ls := NewLayerSet()
	seg := canvas.Segment{Curr: canvas.Point{X: 100, Y: 100}, Color: "#000000", Width: 5}

	ls.DrawActive(seg)
	if ls.PrivateDirty() {
		t.Fatal("shared draw marked the private layer dirty")
	}
	if ls.Shared().Blank() {
		t.Fatal("shared draw did not land on shared surface")
	}

	ls.SetActive(LayerPrivate)
	ls.DrawActive(seg)
	if !ls.PrivateDirty() {
		t.Fatal("private draw did not mark dirty")
	}

	ls.MarkPrivateClean()
	if ls.PrivateDirty() {
		t.Fatal("dirty flag survives MarkPrivateClean")
	}
}

func TestResetSharedDiscardsContent(t *testing.T) {
	ls := NewLayerSet()
	ls.DrawActive(canvas.Segment{Curr: canvas.Point{X: 100, Y: 100}, Color: "#000000", Width: 5})

	ls.ResetShared()
	if !ls.Shared().Blank() {
		t.Fatal("shared surface not blank after reset")
	}
}

func TestReplacePrivateInstallsLoadedSurface(t *testing.T) {
	ls := NewLayerSet()
	ls.SetActive(LayerPrivate)
	ls.DrawActive(canvas.Segment{Curr: canvas.Point{X: 100, Y: 100}, Color: "#000000", Width: 5})

	loaded := canvas.NewDefaultSurface()
	loaded.DrawSegment(canvas.Segment{Curr: canvas.Point{X: 300, Y: 300}, Color: "#ff0000", Width: 5})
	ls.ReplacePrivate(loaded)

	if ls.PrivateDirty() {
		t.Fatal("freshly loaded private layer marked dirty")
	}
	if ls.Private().At(300, 300).R == 0 {
		t.Fatal("loaded content missing")
	}
	if ls.Private().At(100, 100).A != 0 {
		t.Fatal("pre-load content survived replacement")
	}

	ls.ReplacePrivate(nil)
	if !ls.Private().Blank() {
		t.Fatal("nil replacement should install a blank surface")
	}
}
