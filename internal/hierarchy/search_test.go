package hierarchy

import "testing"

func searchTree() []*Node {
	return []*Node{
		{
			ID: "F1", Name: "Anatomy", Type: TypeFolder,
			Children: []*Node{
				{ID: "D1", Name: "Heart.docx", Type: TypeFile, Link: "https://drive/D1", Children: []*Node{}},
				{ID: "F2", Name: "Skeleton", Type: TypeFolder, Children: []*Node{}},
			},
		},
		{
			ID: "F3", Name: "Physiology", Type: TypeFolder,
			Children: []*Node{
				{
					ID: "F4", Name: "Cardio", Type: TypeFolder,
					Children: []*Node{
						{ID: "D3", Name: "Heart Rate.docx", Type: TypeFile, Children: []*Node{}},
					},
				},
			},
		},
	}
}

func TestSearch(t *testing.T) {
	results := Search(searchTree(), "heart")
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	first := results[0]
	if first.Name != "Heart.docx" || first.FileID != "D1" {
		t.Errorf("first match = %+v", first)
	}
	if first.Topic != "Anatomy" {
		t.Errorf("topic = %q, want Anatomy", first.Topic)
	}
	if first.FolderPath != "Anatomy" {
		t.Errorf("folderPath = %q, want Anatomy", first.FolderPath)
	}
	if first.URL != "https://drive/D1" {
		t.Errorf("url = %q", first.URL)
	}

	second := results[1]
	if second.Topic != "Cardio" {
		t.Errorf("nested topic = %q, want Cardio", second.Topic)
	}
	if second.FolderPath != "Physiology/Cardio" {
		t.Errorf("nested folderPath = %q, want Physiology/Cardio", second.FolderPath)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	for _, q := range []string{"HEART", "Heart", "hEaRt"} {
		if got := len(Search(searchTree(), q)); got != 2 {
			t.Errorf("Search(%q) = %d results, want 2", q, got)
		}
	}
}

func TestSearchNoMatches(t *testing.T) {
	results := Search(searchTree(), "liver")
	if results == nil {
		t.Fatal("no-match search should return an empty slice, not nil")
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestSearchIgnoresFolderNames(t *testing.T) {
	// "Skeleton" is a folder; folder names never match.
	if got := len(Search(searchTree(), "skeleton")); got != 0 {
		t.Errorf("folder name matched: %d results", got)
	}
}

func TestSearchTopicAtRoot(t *testing.T) {
	tree := []*Node{
		{ID: "D9", Name: "loose.docx", Type: TypeFile, Children: []*Node{}},
	}
	results := Search(tree, "loose")
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Topic != "Root" {
		t.Errorf("topic for root-level file = %q, want Root", results[0].Topic)
	}
}
