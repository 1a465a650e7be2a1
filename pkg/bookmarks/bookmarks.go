// Package bookmarks reads the browser's bookmark tree.
package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// RootID is the id of the synthetic node holding all top-level folders.
const RootID = "0"

type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type,omitempty"`
	URL      string  `json:"url,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Provider returns the subtree rooted at id as a one-element slice, or an
// empty slice when no such node exists.
type Provider interface {
	SubTree(ctx context.Context, id string) ([]*Node, error)
}

// Count returns the number of bookmarks (nodes with a URL) reachable from
// nodes. Folders are walked, never counted.
func Count(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		switch {
		case n == nil:
		case n.URL != "":
			total++
		case len(n.Children) > 0:
			total += Count(n.Children)
		}
	}
	return total
}

// chromiumFile is the layout of the Chromium "Bookmarks" profile file.
type chromiumFile struct {
	Roots struct {
		BookmarkBar *Node `json:"bookmark_bar"`
		Other       *Node `json:"other"`
		Synced      *Node `json:"synced"`
	} `json:"roots"`
}

// File reads the tree from a Chromium "Bookmarks" JSON file on every call.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) SubTree(_ context.Context, id string) ([]*Node, error) {
	root, err := f.load()
	if err != nil {
		return nil, err
	}

	if n := find(root, id); n != nil {
		return []*Node{n}, nil
	}
	return []*Node{}, nil
}

func (f *File) load() (*Node, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks file: %w", err)
	}

	var file chromiumFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks file %s: %w", f.Path, err)
	}

	root := &Node{ID: RootID, Type: "folder"}
	for _, n := range []*Node{file.Roots.BookmarkBar, file.Roots.Other, file.Roots.Synced} {
		if n != nil {
			root.Children = append(root.Children, n)
		}
	}
	return root, nil
}

func find(n *Node, id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := find(c, id); found != nil {
			return found
		}
	}
	return nil
}
