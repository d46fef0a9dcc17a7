package regexsafe_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessellate/vgraph/codecerr"
	"github.com/tessellate/vgraph/regexsafe"
)

func TestValidateFlags(t *testing.T) {
	assert.NoError(t, regexsafe.ValidateFlags(""))
	assert.NoError(t, regexsafe.ValidateFlags("gi"))
	assert.NoError(t, regexsafe.ValidateFlags("dgimsuvy"))

	err := regexsafe.ValidateFlags("gg")
	assert.Error(t, err)
	assert.Equal(t, codecerr.InputError, (&codecerr.InvalidRegExpFlagsError{}).Kind())
	assert.IsType(t, &codecerr.InvalidRegExpFlagsError{}, err)

	assert.Error(t, regexsafe.ValidateFlags("x"))
}

func TestIsPatternSafe_SafeCorpus(t *testing.T) {
	safe := []string{
		"test",
		"(ab|cd)+",
		`((?:\w+))[a-z]`,
		`(a\|b|aa)+`,
		"(?<name>a|b)+",
	}
	for _, p := range safe {
		t.Run(p, func(t *testing.T) {
			assert.True(t, regexsafe.IsPatternSafe(p), "expected safe: %s", p)
		})
	}
}

func TestIsPatternSafe_UnsafeCorpus(t *testing.T) {
	unsafe := []string{
		"(a+)+",
		"^(a|aa)+$",
		"(a|)+",
		"(?:a|aa)+",
		"(?=a|aa)+",
		"(?<=a|aa)+",
	}
	for _, p := range unsafe {
		t.Run(p, func(t *testing.T) {
			assert.False(t, regexsafe.IsPatternSafe(p), "expected unsafe: %s", p)
		})
	}
}

func TestValidate_LengthCap(t *testing.T) {
	pattern := strings.Repeat("a", regexsafe.DefaultMaxPatternLength+1)
	err := regexsafe.Validate(pattern, regexsafe.Config{})
	assert.Error(t, err)
	var tooLong *codecerr.RegExpPatternTooLongError
	assert.ErrorAs(t, err, &tooLong)
}

func TestValidate_LengthCapDisabled(t *testing.T) {
	pattern := strings.Repeat("a", regexsafe.DefaultMaxPatternLength+1)
	err := regexsafe.Validate(pattern, regexsafe.Config{MaxPatternLength: -1})
	assert.NoError(t, err)
}

func TestValidate_UnsafeRejected(t *testing.T) {
	err := regexsafe.Validate("(a+)+", regexsafe.Config{})
	assert.Error(t, err)
	var unsafe *codecerr.UnsafeRegExpPatternError
	assert.ErrorAs(t, err, &unsafe)
}

func TestValidate_AllowUnsafe(t *testing.T) {
	err := regexsafe.Validate("(a+)+", regexsafe.Config{AllowUnsafe: true})
	assert.NoError(t, err)
}

func TestAmbiguousNamedGroupTreatedAsData(t *testing.T) {
	// "(?<a|b>x)" isn't a valid group name, so the "?<" prefix is left
	// unstripped and the body is "?<a|b>x" verbatim. The trailing "+"
	// quantifies that body: its leading '?' is not an applied quantifier,
	// and its top-level branches "?<a" and "b>x" do not overlap.
	assert.NotPanics(t, func() {
		regexsafe.IsPatternSafe("(?<a|b>x)+")
	})
}
