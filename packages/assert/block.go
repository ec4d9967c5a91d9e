package assert

import (
	"github.com/sheetspec/sheetspec/packages/css"
	"github.com/sheetspec/sheetspec/packages/session"
)

type blockConfig struct {
	description string
	bare        bool
}

// BlockOption tunes a block formatter call.
type BlockOption func(*blockConfig)

// Description labels the block's opening marker.
func Description(d string) BlockOption {
	return func(c *blockConfig) { c.description = d }
}

// Bare emits the body at top level instead of wrapping it in the
// container selector. Used when the body produces complete rules of its
// own, or nests further blocks.
func Bare() BlockOption {
	return func(c *blockConfig) { c.bare = true }
}

// openingMarker renders the block's start comment. The long "MARKER:
// description" form appears when a description was given, and always for
// the generic assert block so that paired checkers can find the
// assertion boundary even unlabeled.
func openingMarker(blockType, description string) string {
	m := Marker(blockType)
	if description != "" || blockType == TypeAssert {
		return m + ": " + description
	}
	return m
}

// Block frames CSS output between marker comments. It records the block
// type as the session's output mode, emits the opening marker, runs the
// body inside the container selector (unless Bare), and closes with the
// END_ marker. The output mode deliberately stays set after the block
// closes; only a strike resets it, so nested and sibling blocks can see
// what scope they extend.
func Block(s *session.Session, blockType string, body func(*css.Writer), opts ...BlockOption) {
	cfg := blockConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	open := openingMarker(blockType, cfg.description)
	s.OutputContext(blockType)
	s.Message(open, session.Comments)
	w := css.NewWriter(s.Report())
	if cfg.bare {
		if body != nil {
			body(w)
		}
	} else {
		w.BeginRule(s.ContainerSelector())
		if body != nil {
			body(w)
		}
		w.EndRule()
	}
	s.Message("END_"+Marker(blockType), session.Comments)
}

// StringBlock frames a literal string between marker comments. The
// needle is emitted as a comment rather than CSS, since it is a search
// target, not output; it is never wrapped in the container selector.
func StringBlock(s *session.Session, blockType, needle string, opts ...BlockOption) {
	cfg := blockConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	s.OutputContext(blockType)
	s.Message(openingMarker(blockType, cfg.description), session.Comments)
	s.Message(needle, session.Comments)
	s.Message("END_"+Marker(blockType), session.Comments)
}
