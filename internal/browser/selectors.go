package browser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BodySelector is the terminal default of every selector chain
const BodySelector = "body"

// strippedTags are removed from the copy of the container whose markup is captured
const strippedTags = "script, style"

// extractFunc picks the first container matching the selectors in order,
// falling back to document.body. Text comes from the live container so it
// reflects rendering; markup comes from a copy without scripts and styles.
const extractFunc = `(selectors) => {
	let container = null;
	let matched = "` + BodySelector + `";
	for (const selector of selectors) {
		container = document.querySelector(selector);
		if (container) {
			matched = selector;
			break;
		}
	}
	if (!container) {
		container = document.body;
	}

	const copy = container.cloneNode(true);
	copy.querySelectorAll("` + strippedTags + `").forEach(el => el.remove());

	return {
		text: container.innerText,
		html: copy.innerHTML,
		title: document.title,
		matched: matched
	};
}`

// bodyTextFunc returns the rendered text of the whole document
const bodyTextFunc = `() => document.body.innerText`

// joinSelectors builds one selector list matching any of selectors
func joinSelectors(selectors []string) string {
	return strings.Join(selectors, ", ")
}

// extractScript is extractFunc applied to selectors, as a single expression
func extractScript(selectors []string) string {
	if selectors == nil {
		selectors = []string{}
	}
	selectorsJSON, _ := json.Marshal(selectors)
	return fmt.Sprintf("(%s)(%s)", extractFunc, selectorsJSON)
}

// blockedResourcePatterns are the URL patterns dropped when resource
// blocking is on: images, stylesheets and fonts.
var blockedResourcePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg",
	"*.css",
	"*.woff", "*.woff2", "*.ttf", "*.otf", "*.eot",
}
