package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/learning"
)

// Module viewer announcements
const (
	AnnounceQuizIncomplete = "Quiz Incomplete. Please answer all questions before submitting."
	AnnounceProgressReset  = "Module progress reset."
	quizErrorIncomplete    = "incomplete"
)

// ModuleController serves the module viewer. Links that change state carry
// tab, section or nav and are announced. Redirects after a form post use
// view, which displays a tab silently so the post's own announcement is not
// pre-empted.
type ModuleController struct {
	catalog  *learning.Catalog
	progress ProgressStore
	metrics  QuizMetrics
}

func NewModuleController(catalog *learning.Catalog, progress ProgressStore, metrics QuizMetrics) *ModuleController {
	return &ModuleController{
		catalog:  catalog,
		progress: progress,
		metrics:  metrics,
	}
}

func (controller *ModuleController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/modules/:id", controller.ViewModule)
	router.POST("/modules/:id/quiz", controller.SubmitQuiz)
	router.POST("/modules/:id/read", controller.ReadAloud)
	router.POST("/modules/:id/reset", controller.ResetProgress)
}

// load resolves the module and the learner's progress in it, answering the
// request itself when either fails.
func (controller *ModuleController) load(c *gin.Context) (learning.Module, learning.Progress, string, bool) {
	m, err := controller.catalog.Get(c.Param("id"))
	if err != nil {
		controller.notFound(c)
		return learning.Module{}, learning.Progress{}, "", false
	}

	profile := CurrentProfile(c)
	if profile == nil {
		c.String(http.StatusInternalServerError, "Device profile unavailable")
		return learning.Module{}, learning.Progress{}, "", false
	}

	p, err := controller.progress.Get(profile.ID, m.ID)
	if err != nil {
		log.Printf("Modules: failed to load progress of %s in %s: %v", profile.ID, m.ID, err)
		c.String(http.StatusInternalServerError, "Failed to load progress")
		return learning.Module{}, learning.Progress{}, "", false
	}
	return m, p, profile.ID, true
}

func (controller *ModuleController) notFound(c *gin.Context) {
	Announce(c, AnnounceNotFound)
	render(c, http.StatusNotFound, "not_found", gin.H{
		"Title": "Module Not Found",
	})
}

func (controller *ModuleController) save(c *gin.Context, profileID, moduleID string, p learning.Progress) bool {
	if err := controller.progress.Save(profileID, moduleID, p); err != nil {
		log.Printf("Modules: failed to save progress of %s in %s: %v", profileID, moduleID, err)
		c.String(http.StatusInternalServerError, "Failed to save progress")
		return false
	}
	return true
}

func (controller *ModuleController) ViewModule(c *gin.Context) {
	m, p, profileID, ok := controller.load(c)
	if !ok {
		return
	}

	tab := learning.ParseTab(c.Query("view"))
	changed := false

	switch {
	case c.Query("tab") != "":
		tab = learning.ParseTab(c.Query("tab"))
		p.SelectTab(tab)
		changed = true
		Announce(c, tab.Announcement())
	case c.Query("section") != "":
		tab = learning.TabContent
		i, valid := queryInt(c, "section")
		if !valid || p.GoToSection(m, i) != nil {
			c.Redirect(http.StatusSeeOther, "/modules/"+m.ID)
			return
		}
		changed = true
		Announce(c, "Section: "+m.SectionTitle(i))
	case c.Query("nav") == "select":
		Announce(c, "Selected module: "+m.Title)
	}

	if changed && !controller.save(c, profileID, m.ID, p) {
		return
	}

	sections := m.Sections()
	current := min(max(p.Section, 0), len(sections)-1)

	position, next := controller.neighbours(m.ID)

	render(c, http.StatusOK, "module", gin.H{
		"Title":        m.Title,
		"Module":       m,
		"Sections":     sections,
		"Section":      sections[current],
		"SectionIndex": current,
		"SectionCount": len(sections),
		"Tab":          string(tab),
		"Progress":     p,
		"QuizError":    c.Query("error") == quizErrorIncomplete,
		"Position":     position,
		"ModuleCount":  len(controller.catalog.All()),
		"NextModule":   next,
	})
}

// neighbours returns the 1-based catalog position of id and the module after
// it, if any.
func (controller *ModuleController) neighbours(id string) (int, *learning.Module) {
	all := controller.catalog.All()
	for i, m := range all {
		if m.ID != id {
			continue
		}
		if i+1 < len(all) {
			return i + 1, &all[i+1]
		}
		return i + 1, nil
	}
	return 0, nil
}

// SubmitQuiz records the posted answers (fields q<question id>) and grades
// the quiz once every question is answered.
func (controller *ModuleController) SubmitQuiz(c *gin.Context) {
	m, p, profileID, ok := controller.load(c)
	if !ok {
		return
	}

	back := "/modules/" + m.ID
	if p.Submitted {
		redirectWith(c, back, url.Values{"view": {string(learning.TabQuiz)}})
		return
	}

	for _, q := range m.Quiz {
		raw := c.PostForm(fmt.Sprintf("q%d", q.ID))
		if raw == "" {
			continue
		}
		option, err := strconv.Atoi(raw)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid answer")
			return
		}
		if err := p.Answer(m, q.ID, option); err != nil {
			c.String(http.StatusBadRequest, "Invalid answer")
			return
		}
	}

	res, err := p.Submit(m)
	switch {
	case errors.Is(err, learning.ErrQuizIncomplete):
		if !controller.save(c, profileID, m.ID, p) {
			return
		}
		Announce(c, AnnounceQuizIncomplete)
		redirectWith(c, back, url.Values{
			"view":  {string(learning.TabQuiz)},
			"error": {quizErrorIncomplete},
		})
		return
	case err != nil:
		log.Printf("Modules: failed to grade quiz of %s: %v", m.ID, err)
		c.String(http.StatusInternalServerError, "Failed to grade quiz")
		return
	}

	if !controller.save(c, profileID, m.ID, p) {
		return
	}
	if controller.metrics != nil {
		controller.metrics.QuizSubmitted(m.ID)
	}
	Announce(c, res.Announcement())
	redirectWith(c, back, url.Values{"view": {string(learning.TabQuiz)}})
}

// ReadAloud speaks the whole module content.
func (controller *ModuleController) ReadAloud(c *gin.Context) {
	m, err := controller.catalog.Get(c.Param("id"))
	if err != nil {
		controller.notFound(c)
		return
	}

	Announce(c, m.PlainText())
	redirectWith(c, "/modules/"+m.ID, url.Values{"view": {string(learning.TabContent)}})
}

func (controller *ModuleController) ResetProgress(c *gin.Context) {
	m, _, profileID, ok := controller.load(c)
	if !ok {
		return
	}

	if err := controller.progress.Reset(profileID, m.ID); err != nil {
		log.Printf("Modules: failed to reset progress of %s in %s: %v", profileID, m.ID, err)
		c.String(http.StatusInternalServerError, "Failed to reset progress")
		return
	}
	Announce(c, AnnounceProgressReset)
	c.Redirect(http.StatusSeeOther, "/modules/"+m.ID)
}
