package http

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/auth"
	"github.com/mrlokans/accesslearn/internal/prefs"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 without exposing it.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Pages ---

// render executes a page template with the data every page needs: the
// document root attributes, current preferences, auth state and CSRF field.
func render(c *gin.Context, status int, name string, data gin.H) {
	page := gin.H{
		"Auth":         GetAuthTemplateData(c),
		"CSRFField":    auth.CSRFFieldName,
		"SpeechStream": c.GetBool(contextKeySpeechStream),
		"Path":         c.Request.URL.Path,
		"Prefs":        prefs.Defaults(),
	}
	if profile := CurrentProfile(c); profile != nil {
		page["Doc"] = profile.Document
		page["Prefs"] = profile.Store.Get()
	}
	for k, v := range data {
		page[k] = v
	}
	c.HTML(status, name, page)
}

// redirectWith sends a 303 to path with query parameters.
func redirectWith(c *gin.Context, path string, q url.Values) {
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	c.Redirect(http.StatusSeeOther, path)
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0, false
	}
	return v, true
}

// templateFuncs are available to every page template.
var templateFuncs = template.FuncMap{
	// css marks the document style attribute as trusted. Its values come
	// from the fixed font tier table.
	"css": func(s string) template.CSS {
		return template.CSS(s)
	},
	"html": func(s string) template.HTML {
		return template.HTML(s)
	},
	"add": func(a, b int) int {
		return a + b
	},
	"subtract": func(a, b int) int {
		return a - b
	},
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, errors.New("dict needs key and value pairs")
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
	// chosen reports whether option was recorded as the answer to question.
	"chosen": func(answers map[int]int, question, option int) bool {
		got, ok := answers[question]
		return ok && got == option
	},
	"optionLabel": func(v any) string {
		if label, ok := optionLabels[fmt.Sprint(v)]; ok {
			return label
		}
		return fmt.Sprint(v)
	},
}

// optionLabels are the display names of preference values.
var optionLabels = map[string]string{
	string(prefs.FontSizeNormal):        "Normal",
	string(prefs.FontSizeLarge):         "Large",
	string(prefs.FontSizeXLarge):        "Extra Large",
	string(prefs.ColorModeDefault):      "Default",
	string(prefs.ColorModeDark):         "Dark Mode",
	string(prefs.ColorModeHighContrast): "High Contrast",
}
