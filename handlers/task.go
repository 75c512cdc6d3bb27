package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tasklist-api/middlewares"
	"tasklist-api/models"
	"tasklist-api/store"
)

type TaskHandler struct {
	tasks store.TaskStore
}

func NewTaskHandler(tasks store.TaskStore) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List godoc
// @Summary      List the caller's tasks
// @Description  Returns the authenticated user's tasks, newest first
// @Tags         tasks
// @Produce      json
// @Param        filter  query  string  false  "all | active | completed"
// @Success      200  {array}  models.Task
// @Failure      400  {object}  map[string]string
// @Router       /api/tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	filter, ok := store.ParseTaskFilter(r.URL.Query().Get("filter"))
	if !ok {
		writeError(w, http.StatusBadRequest, "filter must be all, active or completed")
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID, filter)
	if err != nil {
		log.Printf("list tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch tasks")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        task  body  object  true  "text and optional imageUrl"
// @Success      201  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var input struct {
		Text     string `json:"text"`
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	task := models.Task{
		UserID: userID,
		Text:   input.Text,
	}
	if input.ImageURL != "" {
		task.ImageURL = &input.ImageURL
	}

	if err := h.tasks.Insert(r.Context(), &task); err != nil {
		log.Printf("create task: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update godoc
// @Summary      Edit a task's text or completed flag
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "task id"
// @Param        task  body  object  true  "text and/or completed"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  map[string]string
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var input struct {
		Text      *string `json:"text"`
		Completed *bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.Text == nil && input.Completed == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if input.Text != nil {
		trimmed := strings.TrimSpace(*input.Text)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "text must not be empty")
			return
		}
		input.Text = &trimmed
	}

	task, err := h.tasks.Update(r.Context(), userID, id, store.TaskPatch{
		Text:      input.Text,
		Completed: input.Completed,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Printf("update task %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Param        id  path  string  true  "task id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Printf("delete task %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCompleted godoc
// @Summary      Delete all of the caller's completed tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Router       /api/tasks/completed [delete]
func (h *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	deleted, err := h.tasks.DeleteCompleted(r.Context(), userID)
	if err != nil {
		log.Printf("clear completed tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to clear completed tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
