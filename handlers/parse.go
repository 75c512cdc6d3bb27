package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"tasklist-api/middlewares"
	"tasklist-api/models"
	"tasklist-api/store"
)

// Extractor is the model-backed task extraction contract ParseHandler
// depends on.
type Extractor interface {
	ExtractTasks(ctx context.Context, text, imageURL string) ([]string, error)
}

type ParseHandler struct {
	extractor Extractor
	tasks     store.TaskStore
}

func NewParseHandler(extractor Extractor, tasks store.TaskStore) *ParseHandler {
	return &ParseHandler{extractor: extractor, tasks: tasks}
}

type parseTasksRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

type parseTasksResponse struct {
	TasksCount int      `json:"tasksCount"`
	Tasks      []string `json:"tasks"`
}

// ParseTasks godoc
// @Summary      Extract tasks from free text or an image and store them
// @Description  Sends the input to a multimodal language model, splits the reply into one task per line and bulk-inserts them for the caller
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        input  body  parseTasksRequest  true  "text and/or imageUrl; at least one required"
// @Success      200  {object}  parseTasksResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/parse-tasks [post]
func (h *ParseHandler) ParseTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var req parseTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "provide text or an image")
		return
	}

	// Detached from the request context on purpose: once accepted, a
	// client disconnect must not abort the in-flight model call or the
	// insert.
	ctx := context.Background()

	lines, err := h.extractor.ExtractTasks(ctx, req.Text, req.ImageURL)
	if err != nil {
		log.Printf("task extraction failed: %v", err)
		writeError(w, http.StatusInternalServerError, "task extraction failed")
		return
	}
	if len(lines) == 0 {
		// Expected outcome for non-task-like input, not a server fault.
		writeError(w, http.StatusBadRequest, "no tasks recognized")
		return
	}

	var imageURL *string
	if req.ImageURL != "" {
		imageURL = &req.ImageURL
	}

	tasks := make([]models.Task, 0, len(lines))
	for _, line := range lines {
		tasks = append(tasks, models.Task{
			UserID:    userID,
			Text:      line,
			Completed: false,
			ImageURL:  imageURL,
		})
	}

	if _, err := h.tasks.InsertMany(ctx, tasks); err != nil {
		log.Printf("bulk insert of %d extracted tasks failed: %v", len(tasks), err)
		writeError(w, http.StatusInternalServerError, "failed to save tasks")
		return
	}

	writeJSON(w, http.StatusOK, parseTasksResponse{
		TasksCount: len(lines),
		Tasks:      lines,
	})
}
