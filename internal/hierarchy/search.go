package hierarchy

import "strings"

// Sentinels for search results that cannot be fully resolved.
const (
	rootTopic   = "Root"
	unknownPath = "Unknown"
)

// SearchResult is one file matched by a tree search.
type SearchResult struct {
	Name       string `json:"name"`
	FileID     string `json:"fileId"`
	URL        string `json:"url"`
	Topic      string `json:"topic"`
	FolderPath string `json:"folder"`
}

// Search finds files whose name contains query (case-insensitive) and
// labels each match with its nearest enclosing topic and the folder path
// from the root. Results follow tree traversal order.
func Search(nodes []*Node, query string) []SearchResult {
	results := []SearchResult{}
	query = strings.ToLower(query)
	searchRecursive(nodes, nodes, query, rootTopic, &results)
	return results
}

func searchRecursive(root, nodes []*Node, query, topic string, results *[]SearchResult) {
	for _, node := range nodes {
		switch {
		case node.Type == TypeFile && strings.Contains(strings.ToLower(node.Name), query):
			folderPath, ok := findFolderPath(root, node.ID)
			if !ok {
				folderPath = unknownPath
			}
			*results = append(*results, SearchResult{
				Name:       node.Name,
				FileID:     node.ID,
				URL:        node.Link,
				Topic:      topic,
				FolderPath: folderPath,
			})
		case node.Type == TypeFolder && len(node.Children) > 0:
			childTopic := topic
			if node.Name != "" {
				childTopic = node.Name
			}
			searchRecursive(root, node.Children, query, childTopic, results)
		}
	}
}

// findFolderPath returns the names of the folders between the root and
// the node with the given ID, joined by "/". The matched node itself does
// not contribute to the path.
func findFolderPath(nodes []*Node, id string) (string, bool) {
	for _, node := range nodes {
		if node.ID == id {
			return "", true
		}
		if node.Type != TypeFolder || len(node.Children) == 0 {
			continue
		}
		sub, ok := findFolderPath(node.Children, id)
		if !ok {
			continue
		}
		if node.Name == "" {
			return sub, true
		}
		if sub == "" {
			return node.Name, true
		}
		return node.Name + "/" + sub, true
	}
	return "", false
}
