// Package topics reshapes the drive tree into the three-level
// topic/subtopic/post view served to the frontend.
package topics

import (
	"context"

	"github.com/studyshelf/studyshelf/internal/drivecache"
	"github.com/studyshelf/studyshelf/internal/hierarchy"
)

// Post is a file under a subtopic.
type Post struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Link string `json:"link"`
	URL  string `json:"url"`
}

// SubTopic is a second-level folder.
type SubTopic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Link  string `json:"link"`
	Posts []Post `json:"posts"`
}

// Topic is a top-level folder.
type Topic struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Link      string     `json:"link"`
	SubTopics []SubTopic `json:"subTopics"`
}

// Service maps the cached drive structure to topics.
type Service struct {
	cache *drivecache.Cache
}

// NewService creates a topic service over the structure cache.
func NewService(cache *drivecache.Cache) *Service {
	return &Service{cache: cache}
}

// List returns the topic view of the current drive structure. Only three
// levels are represented; posts without an id are dropped.
func (s *Service) List(ctx context.Context) ([]Topic, error) {
	structure, err := s.cache.Structure(ctx)
	if err != nil {
		return nil, err
	}
	return Map(structure), nil
}

// Map reshapes a drive forest into topics.
func Map(nodes []*hierarchy.Node) []Topic {
	topics := make([]Topic, 0, len(nodes))
	for _, node := range nodes {
		topic := Topic{
			ID:        node.ID,
			Name:      node.Name,
			Type:      node.Type,
			Link:      node.Link,
			SubTopics: make([]SubTopic, 0, len(node.Children)),
		}
		for _, child := range node.Children {
			sub := SubTopic{
				ID:    child.ID,
				Name:  child.Name,
				Type:  child.Type,
				Link:  child.Link,
				Posts: make([]Post, 0, len(child.Children)),
			}
			for _, post := range child.Children {
				if post.ID == "" {
					continue
				}
				sub.Posts = append(sub.Posts, Post{
					ID:   post.ID,
					Name: post.Name,
					Type: post.Type,
					Link: post.Link,
					URL:  post.Link,
				})
			}
			topic.SubTopics = append(topic.SubTopics, sub)
		}
		topics = append(topics, topic)
	}
	return topics
}
