package hierarchy

import (
	"reflect"
	"testing"

	"github.com/studyshelf/studyshelf/internal/drive"
)

func sampleListing() []drive.File {
	return []drive.File{
		{ID: "F1", Name: "Anatomy", MimeType: drive.MimeTypeFolder, Parents: []string{"root"}, WebViewLink: "https://drive/F1"},
		{ID: "D1", Name: "Heart.docx", MimeType: drive.MimeTypeDocument, Parents: []string{"F1"}, WebViewLink: "https://drive/D1"},
		{ID: "F2", Name: "Skeleton", MimeType: drive.MimeTypeFolder, Parents: []string{"F1"}},
		{ID: "D2", Name: "Femur.docx", MimeType: drive.MimeTypeDocument, Parents: []string{"F2"}, WebContentLink: "https://drive/D2/content"},
		{ID: "X1", Name: "Orphan.docx", MimeType: drive.MimeTypeDocument, Parents: []string{"elsewhere"}},
	}
}

func TestBuild(t *testing.T) {
	tree := Build(sampleListing(), "root")

	if len(tree) != 1 {
		t.Fatalf("root children = %d, want 1", len(tree))
	}
	anatomy := tree[0]
	if anatomy.ID != "F1" || anatomy.Type != TypeFolder || anatomy.Link != "https://drive/F1" {
		t.Errorf("unexpected root node: %+v", anatomy)
	}
	if len(anatomy.Children) != 2 {
		t.Fatalf("Anatomy children = %d, want 2", len(anatomy.Children))
	}
	if anatomy.Children[0].ID != "D1" || anatomy.Children[0].Type != TypeFile {
		t.Errorf("first child = %+v, want file D1", anatomy.Children[0])
	}
	if got := anatomy.Children[1]; got.ID != "F2" || got.Type != TypeFolder {
		t.Errorf("second child = %+v, want folder F2", got)
	}
	femur := anatomy.Children[1].Children[0]
	if femur.Link != "https://drive/D2/content" {
		t.Errorf("link fallback to webContentLink failed: %q", femur.Link)
	}
	if len(femur.Children) != 0 {
		t.Errorf("file node has children: %+v", femur.Children)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(sampleListing(), "root")
	b := Build(sampleListing(), "root")
	if !reflect.DeepEqual(a, b) {
		t.Error("Build is not deterministic for identical input")
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	files := []drive.File{
		{ID: "c", Name: "c.docx", MimeType: drive.MimeTypeDocument, Parents: []string{"root"}},
		{ID: "a", Name: "a.docx", MimeType: drive.MimeTypeDocument, Parents: []string{"root"}},
		{ID: "b", Name: "b.docx", MimeType: drive.MimeTypeDocument, Parents: []string{"root"}},
	}
	tree := Build(files, "root")
	want := []string{"c", "a", "b"}
	for i, node := range tree {
		if node.ID != want[i] {
			t.Errorf("tree[%d].ID = %q, want %q", i, node.ID, want[i])
		}
	}
}

func TestFlat(t *testing.T) {
	nodes := Flat(sampleListing())
	if len(nodes) != len(sampleListing()) {
		t.Fatalf("Flat length = %d, want %d", len(nodes), len(sampleListing()))
	}
	for _, node := range nodes {
		if len(node.Children) != 0 {
			t.Errorf("Flat node %s has children", node.ID)
		}
	}
	if nodes[0].Type != TypeFolder || nodes[1].Type != TypeFile {
		t.Errorf("Flat types wrong: %s, %s", nodes[0].Type, nodes[1].Type)
	}
}

func TestFindByID(t *testing.T) {
	tree := Build(sampleListing(), "root")

	tests := []struct {
		id    string
		found bool
	}{
		{"F1", true},
		{"D1", true},
		{"F2", true},
		{"D2", true},
		{"missing", false},
	}
	for _, tt := range tests {
		node := FindByID(tree, tt.id)
		if (node != nil) != tt.found {
			t.Errorf("FindByID(%q) found=%v, want %v", tt.id, node != nil, tt.found)
		}
		if node != nil && node.ID != tt.id {
			t.Errorf("FindByID(%q).ID = %q", tt.id, node.ID)
		}
	}

	if FindByID(nil, "F1") != nil {
		t.Error("FindByID(nil, F1) should return nil")
	}
}

func TestReplaceChildren(t *testing.T) {
	tree := Build(sampleListing(), "root")
	replacement := []*Node{
		{ID: "D3", Name: "Skull.docx", Type: TypeFile, Children: []*Node{}},
	}

	patched := ReplaceChildren(tree, "F2", replacement)
	if patched == nil {
		t.Fatal("ReplaceChildren returned nil for an existing folder")
	}

	f2 := FindByID(patched, "F2")
	if f2 == nil || len(f2.Children) != 1 || f2.Children[0].ID != "D3" {
		t.Fatalf("patched F2 = %+v, want single child D3", f2)
	}

	// The input forest keeps its old shape.
	if old := FindByID(tree, "F2"); len(old.Children) != 1 || old.Children[0].ID != "D2" {
		t.Errorf("input forest mutated: %+v", old.Children)
	}

	// Nodes off the patched path are shared, not cloned.
	if FindByID(tree, "D1") != FindByID(patched, "D1") {
		t.Error("sibling off the patched path was cloned")
	}
	// Nodes on the path are cloned.
	if FindByID(tree, "F1") == FindByID(patched, "F1") {
		t.Error("ancestor on the patched path was not cloned")
	}

	if ReplaceChildren(tree, "missing", replacement) != nil {
		t.Error("ReplaceChildren should return nil for an unknown ID")
	}
	if ReplaceChildren(nil, "F2", replacement) != nil {
		t.Error("ReplaceChildren(nil, ...) should return nil")
	}
}

func TestCountNodes(t *testing.T) {
	tree := Build(sampleListing(), "root")
	if got := CountNodes(tree); got != 4 {
		t.Errorf("CountNodes = %d, want 4", got)
	}
	if got := CountNodes(nil); got != 0 {
		t.Errorf("CountNodes(nil) = %d, want 0", got)
	}
}
