package device

import (
	"time"

	domain "fleet-telemetry/internal/domain/device"

	"github.com/google/uuid"
)

type CreateDeviceRequest struct {
	Name        string  `json:"name" binding:"required,max=120"`
	IMEI        *string `json:"imei" binding:"omitempty,min=8,max=20"`
	Type        string  `json:"type" binding:"omitempty,oneof=car truck van motorcycle equipment other"`
	PlateNumber *string `json:"plate_number"`
	Model       *string `json:"model"`
	Color       *string `json:"color"`
	Year        *int    `json:"year" binding:"omitempty,gte=1950,lte=2100"`
	DriverName  *string `json:"driver_name"`
	DriverPhone *string `json:"driver_phone"`
	Notes       *string `json:"notes"`
	OwnerUserID *string `json:"owner_user_id" binding:"omitempty,uuid"`
}

type UpdateDeviceRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=120"`
	Type        *string `json:"type" binding:"omitempty,oneof=car truck van motorcycle equipment other"`
	PlateNumber *string `json:"plate_number"`
	Model       *string `json:"model"`
	Color       *string `json:"color"`
	Year        *int    `json:"year" binding:"omitempty,gte=1950,lte=2100"`
	DriverName  *string `json:"driver_name"`
	DriverPhone *string `json:"driver_phone"`
	Notes       *string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive maintenance"`
}

type DeviceFilterRequest struct {
	Status   *string `form:"status" binding:"omitempty,oneof=active inactive maintenance"`
	Search   string  `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

type DeviceResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	IMEI        *string    `json:"imei"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	PlateNumber *string    `json:"plate_number"`
	Model       *string    `json:"model"`
	Color       *string    `json:"color"`
	Year        *int       `json:"year"`
	DriverName  *string    `json:"driver_name"`
	DriverPhone *string    `json:"driver_phone"`
	Notes       *string    `json:"notes"`
	Online      bool       `json:"online"`
	LastSeenAt  *time.Time `json:"last_seen_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type DeviceListResponse struct {
	Devices    []DeviceResponse `json:"devices"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

func ToDeviceResponse(d *domain.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:          d.ID,
		Name:        d.Name,
		IMEI:        d.IMEI,
		Type:        string(d.Type),
		Status:      string(d.Status),
		PlateNumber: d.PlateNumber,
		Model:       d.Model,
		Color:       d.Color,
		Year:        d.Year,
		DriverName:  d.DriverName,
		DriverPhone: d.DriverPhone,
		Notes:       d.Notes,
		Online:      d.IsOnline(),
		LastSeenAt:  d.LastSeenAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ToDomainFilter(req *DeviceFilterRequest) *domain.Filter {
	filter := &domain.Filter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Status != nil {
		status := domain.DeviceStatus(*req.Status)
		filter.Status = &status
	}
	return filter
}
