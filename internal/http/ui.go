package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/auth"
	"github.com/mrlokans/accesslearn/internal/learning"
)

// Navigation announcements
const (
	AnnounceHome         = "Navigated to home page"
	AnnounceModuleList   = "Returned to module list"
	AnnounceLoginForm    = "Login form"
	AnnounceRegisterForm = "Registration form"
	AnnounceNotFound     = "Page not found. The page you are looking for doesn't exist or has been moved."
)

// ModuleCard is a module in the list with the learner's progress.
type ModuleCard struct {
	learning.Module
	Progress int
}

// CategoryTab is one category filter of the module list.
type CategoryTab struct {
	Value string
	Label string
}

type UIController struct {
	catalog  *learning.Catalog
	progress ProgressStore
}

func NewUIController(catalog *learning.Catalog, progress ProgressStore) *UIController {
	return &UIController{
		catalog:  catalog,
		progress: progress,
	}
}

// HomePage shows the landing page with the auth forms to guests and the
// module list to learners.
func (controller *UIController) HomePage(c *gin.Context) {
	if !auth.IsAuthenticated(c) {
		controller.landing(c)
		return
	}

	category := strings.ToLower(c.DefaultQuery("category", learning.CategoryAll))
	modules := controller.catalog.Filter(category)

	var values map[string]int
	if profile := CurrentProfile(c); profile != nil && controller.progress != nil {
		var err error
		values, err = controller.progress.Values(profile.ID)
		if err != nil {
			log.Printf("UI: failed to load progress for %s: %v", profile.ID, err)
		}
	}

	cards := make([]ModuleCard, 0, len(modules))
	for _, m := range modules {
		cards = append(cards, ModuleCard{Module: m, Progress: values[m.ID]})
	}

	switch {
	case c.Query("category") != "":
		Announce(c, "Filtering by "+category+" category")
	case c.Query("nav") == "home":
		Announce(c, AnnounceHome)
	case c.Query("nav") == "modules":
		Announce(c, AnnounceModuleList)
	}

	categories := []CategoryTab{{Value: learning.CategoryAll, Label: "All Topics"}}
	for _, cat := range controller.catalog.Categories() {
		categories = append(categories, CategoryTab{Value: strings.ToLower(cat), Label: cat})
	}

	render(c, http.StatusOK, "modules", gin.H{
		"Title":      "Learning Modules",
		"Modules":    cards,
		"Category":   category,
		"Categories": categories,
	})
}

func (controller *UIController) landing(c *gin.Context) {
	form := c.Query("form")
	if form != auth.FormRegister {
		form = auth.FormLogin
	}

	switch c.Query("nav") {
	case "form":
		if form == auth.FormRegister {
			Announce(c, AnnounceRegisterForm)
		} else {
			Announce(c, AnnounceLoginForm)
		}
	case "home":
		Announce(c, AnnounceHome)
	}

	render(c, http.StatusOK, "landing", gin.H{
		"Title": "Learning Accessible for Everyone",
		"Form":  form,
		"Error": c.Query("error"),
		"Email": c.Query("email"),
		"Next":  c.Query("next"),
	})
}

// NotFound answers unknown routes. API clients get JSON, pages get spoken to.
func (controller *UIController) NotFound(c *gin.Context) {
	log.Printf("404: learner attempted to access non-existent route: %s", c.Request.URL.Path)

	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		respondNotFound(c, "route")
		return
	}

	Announce(c, AnnounceNotFound)
	render(c, http.StatusNotFound, "not_found", gin.H{
		"Title": "Page Not Found",
	})
}
