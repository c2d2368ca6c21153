package utils

import "github.com/microcosm-cc/bluemonday"

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips all HTML from user supplied free text (intro, answers).
func Sanitize(input string) string {
	return strictPolicy.Sanitize(input)
}
