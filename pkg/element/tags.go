package element

import "strings"

// TagClass groups element kinds that share editable properties.
type TagClass uint8

const (
	// ClassText elements carry editable typography.
	ClassText TagClass = 1 << iota
	// ClassBlock elements carry box properties such as borders and shadows.
	ClassBlock
)

var tagClasses = map[string]TagClass{
	"h1":      ClassText,
	"h2":      ClassText,
	"h3":      ClassText,
	"h4":      ClassText,
	"h5":      ClassText,
	"h6":      ClassText,
	"p":       ClassText,
	"span":    ClassText,
	"div":     ClassText | ClassBlock,
	"section": ClassBlock,
	"article": ClassBlock,
	"main":    ClassBlock,
	"aside":   ClassBlock,
	"header":  ClassBlock,
	"footer":  ClassBlock,
}

// ClassOf returns the classes of a tag name, ignoring case.
func ClassOf(tag string) TagClass {
	return tagClasses[strings.ToLower(tag)]
}

// Is reports whether the node's tag belongs to class c.
func (n *Node) Is(c TagClass) bool {
	return ClassOf(n.TagName)&c != 0
}
