package http_record

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/lootsplit/internal/delivery/http/common"
	http_room "github.com/humanbelnik/lootsplit/internal/delivery/http/room"
	"github.com/humanbelnik/lootsplit/internal/model"
	usecase_record "github.com/humanbelnik/lootsplit/internal/usecase/record"
	usecase_room "github.com/humanbelnik/lootsplit/internal/usecase/room"
	"go.uber.org/zap"
)

type Controller struct {
	rooms   *usecase_room.Usecase
	records *usecase_record.Usecase
	logger  *zap.Logger
}

func New(rooms *usecase_room.Usecase, records *usecase_record.Usecase, logger *zap.Logger) *Controller {
	return &Controller{
		rooms:   rooms,
		records: records,
		logger:  logger,
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	records := router.Group("/rooms/:room_code/records")
	{
		records.GET("", c.readAll)
		records.GET("/:record_id", c.read)
		records.PUT("/:record_id", c.write)
	}
}

type WriteRequestDTO struct {
	Label   string          `json:"label"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

type RecordResponseDTO struct {
	RecordID  string          `json:"record_id"`
	Label     string          `json:"label"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type RoomRecordsResponseDTO struct {
	Records map[string]model.RecordState `json:"records"`
}

// @Summary Read the current state of every record in a room
// @Tags Records
// @Produce json
// @Param room_code path string true "Room code"
// @Success 200 {object} RoomRecordsResponseDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /rooms/{room_code}/records [get]
func (c *Controller) readAll(ctx *gin.Context) {
	room, ok := http_room.ResolveRoom(ctx, c.rooms, c.logger)
	if !ok {
		return
	}

	states, err := c.records.ReadAll(ctx, room.Code)
	if err != nil {
		c.logger.Error("failed to read records", zap.String("room", room.Code), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, RoomRecordsResponseDTO{Records: states})
}

// @Summary Read one record
// @Tags Records
// @Produce json
// @Param room_code path string true "Room code"
// @Param record_id path string true "Record id"
// @Success 200 {object} RecordResponseDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Router /rooms/{room_code}/records/{record_id} [get]
func (c *Controller) read(ctx *gin.Context) {
	room, ok := http_room.ResolveRoom(ctx, c.rooms, c.logger)
	if !ok {
		return
	}
	recordID := ctx.Param("record_id")

	state, err := c.records.Read(ctx, room.Code, recordID)
	if err != nil {
		if errors.Is(err, usecase_record.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "record not found",
			})
			return
		}
		c.logger.Error("failed to read record", zap.String("room", room.Code), zap.String("record_id", recordID), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, RecordResponseDTO{
		RecordID:  recordID,
		Label:     state.Label,
		Payload:   state.Payload,
		UpdatedAt: state.UpdatedAt,
	})
}

// @Summary Write a record
// @Description Stores the record and pushes it to every live member of the room.
// @Tags Records
// @Accept json
// @Produce json
// @Param room_code path string true "Room code"
// @Param record_id path string true "Record id"
// @Param request body WriteRequestDTO true "Label and payload"
// @Success 200 {object} RecordResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /rooms/{room_code}/records/{record_id} [put]
func (c *Controller) write(ctx *gin.Context) {
	var req WriteRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	room, ok := http_room.ResolveRoom(ctx, c.rooms, c.logger)
	if !ok {
		return
	}

	record, err := c.records.Write(ctx, model.WriteRequest{
		RoomCode: room.Code,
		RecordID: ctx.Param("record_id"),
		Label:    req.Label,
		Payload:  req.Payload,
		Origin:   model.OriginRequest,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase_record.ErrInvalidPayload):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "invalid payload",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, RecordResponseDTO{
		RecordID:  record.RecordID,
		Label:     record.Label,
		Payload:   record.Payload,
		UpdatedAt: record.UpdatedAt,
	})
}
