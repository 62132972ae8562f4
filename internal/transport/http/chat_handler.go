package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/loanmate-platform/loanmate-api/internal/domain"
	"github.com/loanmate-platform/loanmate-api/internal/service"
	"github.com/loanmate-platform/loanmate-api/internal/util"
)

type ChatHandler struct {
	chat *service.ChatService
}

func RegisterChat(e *echo.Echo, auth *service.AuthService, chat *service.ChatService) {
	handler := &ChatHandler{chat: chat}

	group := e.Group("/api/chatbot")
	group.POST("/conversation/start", handler.start, OptionalAuth(auth))
	group.POST("/conversation/message", handler.storeMessage)
	group.GET("/conversation/:sessionId", handler.get)
	group.GET("/conversations/user", handler.listByUser, RequireAuth(auth))
	group.GET("/conversations/all", handler.listAll)
	group.POST("/conversation/end", handler.end)
	group.DELETE("/conversation/:sessionId", handler.delete)
}

type startConversationRequest struct {
	SessionID string  `json:"sessionId"`
	UserEmail *string `json:"userEmail"`
	UserAgent *string `json:"userAgent"`
	IPAddress *string `json:"ipAddress"`
}

func (h *ChatHandler) start(c echo.Context) error {
	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return c.JSON(http.StatusBadRequest, util.Fail("sessionId is required"))
	}

	in := service.StartConversationInput{
		SessionID: req.SessionID,
		UserEmail: req.UserEmail,
		UserAgent: req.UserAgent,
		IPAddress: req.IPAddress,
	}
	if in.UserAgent == nil {
		ua := c.Request().UserAgent()
		in.UserAgent = &ua
	}
	if in.IPAddress == nil {
		ip := c.RealIP()
		in.IPAddress = &ip
	}
	if user, ok := CurrentUser(c); ok {
		in.UserID = &user.ID
	}

	conv, err := h.chat.Start(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail("Failed to start conversation"))
	}

	return c.JSON(http.StatusOK, util.OK("").
		With("conversationId", conv.ID).
		With("sessionId", conv.SessionID))
}

type storeMessageRequest struct {
	SessionID   string `json:"sessionId"`
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
	MessageID   string `json:"messageId"`
}

func (h *ChatHandler) storeMessage(c echo.Context) error {
	var req storeMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}

	msg, err := h.chat.AppendMessage(c.Request().Context(), req.SessionID, domain.MessageType(req.MessageType), req.Message, req.MessageID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			return c.JSON(http.StatusNotFound, util.Fail("Conversation not found"))
		case errors.Is(err, service.ErrMessageTypeInvalid):
			return c.JSON(http.StatusBadRequest, util.Fail(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail("Failed to store message"))
		}
	}

	return c.JSON(http.StatusOK, util.OK("").With("messageId", msg.MessageID))
}

func (h *ChatHandler) get(c echo.Context) error {
	conv, err := h.chat.Get(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, util.Fail("Conversation not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail("Failed to fetch conversation"))
	}

	return c.JSON(http.StatusOK, util.OK("").With("conversation", conv))
}

func (h *ChatHandler) listByUser(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	page, limit := parsePagination(c, 1, 10)
	result, err := h.chat.ListByUser(c.Request().Context(), user.ID, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail("Failed to fetch conversations"))
	}

	return c.JSON(http.StatusOK, util.OK("").
		With("conversations", result.Conversations).
		With("pagination", paginationMeta(result)))
}

func (h *ChatHandler) listAll(c echo.Context) error {
	page, limit := parsePagination(c, 1, 20)
	search := c.QueryParam("search")

	result, err := h.chat.ListAll(c.Request().Context(), search, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail("Failed to fetch conversations"))
	}

	return c.JSON(http.StatusOK, util.OK("").
		With("conversations", result.Conversations).
		With("pagination", paginationMeta(result)))
}

type endConversationRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *ChatHandler) end(c echo.Context) error {
	var req endConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid request body"))
	}

	if err := h.chat.End(c.Request().Context(), req.SessionID); err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, util.Fail("Conversation not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail("Failed to end conversation"))
	}

	return c.JSON(http.StatusOK, util.OK("Conversation ended successfully"))
}

func (h *ChatHandler) delete(c echo.Context) error {
	if err := h.chat.Delete(c.Request().Context(), c.Param("sessionId")); err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return c.JSON(http.StatusNotFound, util.Fail("Conversation not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail("Failed to delete conversation"))
	}

	return c.JSON(http.StatusOK, util.OK("Conversation deleted successfully"))
}

func parsePagination(c echo.Context, defaultPage, defaultLimit int) (int, int) {
	page := defaultPage
	limit := defaultLimit
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}

func paginationMeta(result *service.ConversationPage) util.Envelope {
	return util.Envelope{
		"current": result.Current,
		"total":   result.TotalPages,
		"count":   result.Count,
	}
}
