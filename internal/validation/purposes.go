package validation

import (
	"strings"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

// PurposeSelection mirrors the purpose checkboxes of the funding modal.
// The zero value is an empty selection.
type PurposeSelection struct {
	tags   []string
	custom string
}

// Toggle checks or unchecks tag. Checking a tag beyond MaxPurposes leaves it
// unchecked and returns a TooManyPurposes error. Unchecking "other" clears the
// custom text.
func (s *PurposeSelection) Toggle(tag string, checked bool) error {
	tag = strings.TrimSpace(tag)
	idx := s.index(tag)
	if !checked {
		if idx >= 0 {
			s.tags = append(s.tags[:idx], s.tags[idx+1:]...)
		}
		if tag == models.PurposeOther {
			s.custom = ""
		}
		return nil
	}
	if idx >= 0 {
		return nil
	}
	if len(s.tags) >= models.MaxPurposes {
		return newError(TooManyPurposes, "purpose")
	}
	s.tags = append(s.tags, tag)
	return nil
}

func (s *PurposeSelection) SetCustom(text string) {
	if !s.OtherSelected() {
		s.custom = ""
		return
	}
	s.custom = text
}

func (s *PurposeSelection) Reset() {
	s.tags = nil
	s.custom = ""
}

func (s *PurposeSelection) Selected() []string {
	return append([]string(nil), s.tags...)
}

func (s *PurposeSelection) Custom() string { return s.custom }

// OtherSelected reports whether the free-text purpose box should be shown.
func (s *PurposeSelection) OtherSelected() bool {
	return s.index(models.PurposeOther) >= 0
}

func (s *PurposeSelection) index(tag string) int {
	for i, t := range s.tags {
		if t == tag {
			return i
		}
	}
	return -1
}
