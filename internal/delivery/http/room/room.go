package http_room

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/lootsplit/internal/delivery/http/common"
	"github.com/humanbelnik/lootsplit/internal/model"
	usecase_room "github.com/humanbelnik/lootsplit/internal/usecase/room"
	"go.uber.org/zap"
)

type Controller struct {
	usecase *usecase_room.Usecase
	logger  *zap.Logger
}

func New(usecase *usecase_room.Usecase, logger *zap.Logger) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  logger,
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.create)
		rooms.GET("/:room_code", c.get)
	}
}

type CreateRequestDTO struct {
	Name string `json:"name" binding:"required"`
}

type RoomResponseDTO struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toDTO(room model.Room) RoomResponseDTO {
	return RoomResponseDTO{
		ID:        room.ID.String(),
		Code:      room.Code,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
	}
}

// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param request body CreateRequestDTO true "Room name"
// @Success 201 {object} RoomResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 503 {object} http_common.ErrorResponse
// @Router /rooms [post]
func (c *Controller) create(ctx *gin.Context) {
	var req CreateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	room, err := c.usecase.CreateRoom(ctx, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, usecase_room.ErrInvalidName):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "invalid room name",
			})
		default:
			c.logger.Error("failed to create room", zap.Error(err))
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "unavailable",
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, toDTO(room))
}

// @Summary Get room
// @Tags Rooms
// @Produce json
// @Param room_code path string true "Room code"
// @Success 200 {object} RoomResponseDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Router /rooms/{room_code} [get]
func (c *Controller) get(ctx *gin.Context) {
	room, ok := ResolveRoom(ctx, c.usecase, c.logger)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, toDTO(room))
}

// ResolveRoom looks up the :room_code path parameter and writes the error
// response itself when the room cannot be resolved.
func ResolveRoom(ctx *gin.Context, usecase *usecase_room.Usecase, logger *zap.Logger) (model.Room, bool) {
	code := ctx.Param("room_code")

	room, err := usecase.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, usecase_room.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found",
			})
			return model.Room{}, false
		}
		logger.Error("failed to resolve room", zap.String("room", code), zap.Error(err))
		ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
			Message: "unavailable",
		})
		return model.Room{}, false
	}
	return room, true
}
