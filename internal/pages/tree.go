package pages

import (
	"strings"

	"github.com/google/uuid"
)

// Tree positions are materialized paths: every level adds a fixed width
// base36 step, so ordering by path yields a depth first walk.
const (
	stepLength   = 4
	stepAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var maxStep = pow36(stepLength) - 1

func pow36(n int) int {
	out := 1
	for range n {
		out *= len(stepAlphabet)
	}
	return out
}

func encodeStep(n int) (string, error) {
	if n < 1 || n > maxStep {
		return "", ErrTreeDepthExhausted
	}
	buf := make([]byte, stepLength)
	for i := stepLength - 1; i >= 0; i-- {
		buf[i] = stepAlphabet[n%len(stepAlphabet)]
		n /= len(stepAlphabet)
	}
	return string(buf), nil
}

func decodeStep(step string) int {
	n := 0
	for _, r := range strings.ToUpper(step) {
		n = n*len(stepAlphabet) + strings.IndexRune(stepAlphabet, r)
	}
	return n
}

// nextChildPath returns the path after the last existing child of parent.
func nextChildPath(parentPath string, children []*Page) (string, error) {
	last := 0
	for _, child := range children {
		if len(child.Path) < stepLength {
			continue
		}
		if step := decodeStep(child.Path[len(child.Path)-stepLength:]); step > last {
			last = step
		}
	}
	step, err := encodeStep(last + 1)
	if err != nil {
		return "", err
	}
	return parentPath + step, nil
}

// depthOf returns the tree depth encoded in path; the root has depth 1.
func depthOf(path string) int {
	return len(path) / stepLength
}

// urlPathFor derives the URL path of a page under parent.
func urlPathFor(parent *Page, slug string) string {
	if parent == nil {
		return "/"
	}
	return parent.URLPath + slug + "/"
}

func parentIDOf(page *Page) uuid.UUID {
	if page == nil || page.ParentID == nil {
		return uuid.Nil
	}
	return *page.ParentID
}
