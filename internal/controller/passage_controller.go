package controller

import (
	"qna-chat-be/internal/dto"
	"qna-chat-be/internal/pkg/serverutils"
	"qna-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPassageController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type passageController struct {
	ingestService service.IIngestService
}

func NewPassageController(ingestService service.IIngestService) IPassageController {
	return &passageController{
		ingestService: ingestService,
	}
}

func (c *passageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/passage/v1")
	h.Use(serverutils.JwtMiddleware) // admin surface
	h.Post("ingest", c.Ingest)
	h.Get("", c.List)
}

func (c *passageController) Ingest(ctx *fiber.Ctx) error {
	var req []dto.IngestPassageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	for _, p := range req {
		if err := serverutils.ValidateRequest(p); err != nil {
			return err
		}
	}

	queued, err := c.ingestService.Enqueue(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Passages queued", dto.IngestPassageResponse{Queued: queued}))
}

func (c *passageController) List(ctx *fiber.Ctx) error {
	res, err := c.ingestService.ListPassages(ctx.Context(), ctx.Query("locale"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
