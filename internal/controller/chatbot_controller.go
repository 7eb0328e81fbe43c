package controller

import (
	"qna-chat-be/internal/dto"
	"qna-chat-be/internal/pkg/serverutils"
	"qna-chat-be/internal/service"
	ws "qna-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	PollAnswer(ctx *fiber.Ctx) error
	GetConversations(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
	hub            *ws.Hub
}

func NewChatbotController(chatbotService service.IChatbotService, hub *ws.Hub) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
		hub:            hub,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.ClientMiddleware)
	h.Post("ask", c.Ask)
	h.Get("answer/:question_id", c.PollAnswer)
	h.Get("conversations", c.GetConversations)
	h.Get("conversations/:id/history", c.GetHistory)

	h.Use("ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			ctx.Locals("ws_client_id", ctx.Locals("client_id"))
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("ws", websocket.New(func(conn *websocket.Conn) {
		clientId, _ := conn.Locals("ws_client_id").(string)
		if clientId == "" {
			conn.Close()
			return
		}
		ws.ServeWs(c.hub, conn, clientId)
	}))
}

func (c *chatbotController) Ask(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("client_id").(string)

	var req dto.AskQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Ask(ctx.Context(), clientId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Question accepted", res))
}

func (c *chatbotController) PollAnswer(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("client_id").(string)

	questionId, err := uuid.Parse(ctx.Params("question_id"))
	if err != nil {
		return &serverutils.BadRequestError{Message: "invalid question id"}
	}

	res, err := c.chatbotService.PollAnswer(ctx.Context(), clientId, questionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatbotController) GetConversations(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("client_id").(string)

	res, err := c.chatbotService.GetConversations(ctx.Context(), clientId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatbotController) GetHistory(ctx *fiber.Ctx) error {
	clientId := ctx.Locals("client_id").(string)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return &serverutils.BadRequestError{Message: "invalid conversation id"}
	}

	res, err := c.chatbotService.GetHistory(ctx.Context(), clientId, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
