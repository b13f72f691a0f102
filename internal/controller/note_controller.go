package controller

import (
	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/pkg/apperror"
	"voicenotes-be/internal/pkg/serverutils"
	"voicenotes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Favorite(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Put(":id/favorite", c.Favorite)
	h.Delete(":id", c.Delete)
}

func authenticatedUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("Invalid claims")
	}
	return userId, nil
}

// noteIdParam parses the :id path segment. A malformed id can never match
// a stored note, so it reports the same NotFound as a missing one.
func noteIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("note not found")
	}
	return id, nil
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("", "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success create note", res))
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return err
	}

	q := dto.ListNotesQuery{
		FavoriteOnly: ctx.QueryBool("favorite", false),
		Limit:        ctx.QueryInt("limit", 0),
		Offset:       ctx.QueryInt("offset", 0),
	}

	res, err := c.noteService.List(ctx.Context(), userId, &q)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return err
	}

	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return err
	}

	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("", "invalid request body")
	}
	req.Id = id

	res, err := c.noteService.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Favorite(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return err
	}

	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.FavoriteNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("", "invalid request body")
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Favorite(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success favorite note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return err
	}

	id, err := noteIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.noteService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete note", nil))
}
