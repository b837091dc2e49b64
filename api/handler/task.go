package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/worklog/api/transport"
	"github.com/fastygo/worklog/domain"
	"github.com/fastygo/worklog/internal/images"
	"github.com/fastygo/worklog/pkg/httpcontext"
	taskUC "github.com/fastygo/worklog/usecase/task"
)

// imageFields are the multipart keys that carry uploaded images.
var imageFields = []string{"images", "images[]"}

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks in a date range
// @Tags tasks
// @Router /api/tasks [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	rng, err := domain.NewDateRange(string(args.Peek("start")), string(args.Peek("end")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, rng)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Accept multipart/form-data,json
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	form, err := parseTaskForm(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	in := taskUC.CreateInput{
		Title:     deref(form.Title),
		TaskDate:  deref(form.TaskDate),
		Note:      form.Note,
		Status:    form.Status,
		StartTime: form.StartTime,
		EndTime:   form.EndTime,
		Images:    form.Uploads,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, created)
}

// @Summary Patch task
// @Tags tasks
// @Accept multipart/form-data,json
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	form, err := parseTaskForm(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	in := taskUC.PatchInput{
		Title:       form.Title,
		Note:        form.Note,
		Status:      form.Status,
		TaskDate:    form.TaskDate,
		StartTime:   form.StartTime,
		EndTime:     form.EndTime,
		Images:      form.Uploads,
		ClearImages: form.ImageClear,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.PatchTask(stdCtx, id, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, updated)
}

// @Summary Delete task and its images
// @Tags tasks
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.OKBody{OK: true})
}

// @Summary Remove one image from a task
// @Tags tasks
// @Router /api/tasks/{id}/image [delete]
func (h *TaskHandler) DeleteImage(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}
	src := string(ctx.QueryArgs().Peek("src"))
	if src == "" {
		h.respondInvalid(ctx, "src required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.RemoveImage(stdCtx, id, src)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, updated)
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if strings.TrimSpace(id) == "" {
		h.respondInvalid(ctx, "missing task id")
		return "", false
	}
	return id, true
}

// taskForm is a create or update request after transport decoding.
type taskForm struct {
	Title      *string
	Note       *string
	Status     *string
	TaskDate   *string
	StartTime  *string
	EndTime    *string
	ImageClear bool
	Uploads    []images.Upload
}

func parseTaskForm(ctx *fasthttp.RequestCtx) (taskForm, error) {
	contentType := string(ctx.Request.Header.ContentType())
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		return parseMultipart(ctx)
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		return parseURLEncoded(ctx), nil
	default:
		return parseJSON(ctx.PostBody())
	}
}

func parseJSON(body []byte) (taskForm, error) {
	var req transport.TaskRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return taskForm{}, domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
		}
	}
	return taskForm{
		Title:      req.Title,
		Note:       req.Note,
		Status:     req.Status,
		TaskDate:   req.TaskDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ImageClear: bool(req.ImageClear),
	}, nil
}

func parseURLEncoded(ctx *fasthttp.RequestCtx) taskForm {
	args := ctx.PostArgs()
	value := func(key string) *string {
		if !args.Has(key) {
			return nil
		}
		v := string(args.Peek(key))
		return &v
	}
	return taskForm{
		Title:      value("title"),
		Note:       value("note"),
		Status:     value("status"),
		TaskDate:   value("task_date"),
		StartTime:  value("start_time"),
		EndTime:    value("end_time"),
		ImageClear: transport.ParseFlag(string(args.Peek("image_clear"))),
	}
}

func parseMultipart(ctx *fasthttp.RequestCtx) (taskForm, error) {
	mf, err := ctx.MultipartForm()
	if err != nil {
		return taskForm{}, domain.WrapError(domain.ErrCodeInvalid, "invalid multipart form", err)
	}

	value := func(key string) *string {
		vals, ok := mf.Value[key]
		if !ok || len(vals) == 0 {
			return nil
		}
		v := vals[0]
		return &v
	}

	form := taskForm{
		Title:      value("title"),
		Note:       value("note"),
		Status:     value("status"),
		TaskDate:   value("task_date"),
		StartTime:  value("start_time"),
		EndTime:    value("end_time"),
		ImageClear: transport.ParseFlag(deref(value("image_clear"))),
	}

	var files []*multipart.FileHeader
	for _, key := range imageFields {
		files = append(files, mf.File[key]...)
	}
	if len(files) > domain.MaxImages {
		return taskForm{}, domain.ErrTooManyImages
	}
	for _, fh := range files {
		if !declaredImage(fh) {
			return taskForm{}, domain.ErrNotAnImage
		}
		form.Uploads = append(form.Uploads, images.Upload{
			Filename: fh.Filename,
			Open:     openFileHeader(fh),
		})
	}
	return form, nil
}

// declaredImage rejects parts whose declared type is not an image. Parts without a type are
// left to content sniffing in storage.
func declaredImage(fh *multipart.FileHeader) bool {
	ct := fh.Header.Get("Content-Type")
	return ct == "" || ct == "application/octet-stream" || strings.HasPrefix(ct, "image/")
}

func openFileHeader(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
