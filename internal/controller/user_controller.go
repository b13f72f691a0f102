package controller

import (
	"voicenotes-be/internal/pkg/serverutils"
	"voicenotes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Profile(ctx *fiber.Ctx) error
}

type userController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) IUserController {
	return &userController{
		userService: userService,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/me", c.Profile)
}

func (c *userController) Profile(ctx *fiber.Ctx) error {
	userId, err := authenticatedUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.userService.Profile(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show profile", res))
}
