package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vehicle-alert/internal/config"
	"vehicle-alert/internal/domain/abuse"
	domainDevice "vehicle-alert/internal/domain/device"
	domainVehicle "vehicle-alert/internal/domain/vehicle"
	"vehicle-alert/internal/identity"
	"vehicle-alert/internal/logger"
	"vehicle-alert/internal/plate"
	"vehicle-alert/internal/qr"
	"vehicle-alert/internal/usecase/ratelimit"
	apperrors "vehicle-alert/pkg/errors"
	"vehicle-alert/pkg/utils"
)

// AnonymousTokenBytes is the entropy behind a device's session linkage
// token.
const AnonymousTokenBytes = 32

// Service implements device and vehicle registration. Raw identifiers
// (client device tokens, license plates) exist only on the stack inside
// these methods; only peppered hashes reach the repositories.
type Service struct {
	devices  domainDevice.Repository
	vehicles domainVehicle.Repository
	hasher   *identity.Hasher
	limiter  *ratelimit.Service
	cfg      *config.Config
}

func NewService(
	devices domainDevice.Repository,
	vehicles domainVehicle.Repository,
	hasher *identity.Hasher,
	limiter *ratelimit.Service,
	cfg *config.Config,
) *Service {
	return &Service{
		devices:  devices,
		vehicles: vehicles,
		hasher:   hasher,
		limiter:  limiter,
		cfg:      cfg,
	}
}

// RegisterDevice creates a device on first contact and behaves as a
// login afterwards: the same client identifier maps to the same row,
// gets its retention horizon extended, and receives a fresh session
// token. Banned devices cannot refresh a session.
func (s *Service) RegisterDevice(ctx context.Context, req *RegisterDeviceRequest) (*RegisterDeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid registration payload", err)
	}

	deviceHash := s.hasher.HashDeviceID(req.DeviceID)

	dev, err := s.devices.GetByHash(ctx, deviceHash)
	switch {
	case err == nil:
		if dev.Banned(time.Now()) {
			return nil, apperrors.Authorization("device is banned")
		}
		if err := s.devices.Touch(ctx, dev.ID, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to refresh device: %w", err)
		}
		if req.Latitude != nil || req.Longitude != nil {
			if err := s.devices.UpdateLocation(ctx, dev.ID, req.Latitude, req.Longitude, nil); err != nil {
				return nil, fmt.Errorf("failed to update device location: %w", err)
			}
		}

	case errors.Is(err, domainDevice.ErrDeviceNotFound):
		anonToken, tokenErr := utils.GenerateSecureToken(AnonymousTokenBytes)
		if tokenErr != nil {
			return nil, fmt.Errorf("failed to generate anonymous token: %w", tokenErr)
		}
		dev = &domainDevice.Device{
			DeviceIDHash:   deviceHash,
			AnonymousToken: anonToken,
			LastLatitude:   req.Latitude,
			LastLongitude:  req.Longitude,
			AlertRadiusKm:  domainDevice.DefaultAlertRadiusKm,
			IsActive:       true,
			TrustScore:     domainDevice.DefaultTrustScore,
		}
		if err := s.devices.Create(ctx, dev); err != nil {
			if errors.Is(err, domainDevice.ErrDeviceExists) {
				return nil, apperrors.Conflict("device already registered")
			}
			return nil, err
		}
		logger.Info("Device registered",
			zap.String("device_id", dev.ID.String()),
			zap.String("event", "device_registered"),
		)

	default:
		return nil, err
	}

	accessToken, err := utils.GenerateDeviceToken(dev.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &RegisterDeviceResponse{
		AccessToken: accessToken,
		DeviceID:    dev.ID,
	}, nil
}

func (s *Service) GetDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	dev, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, apperrors.NotFound("device not found")
	}
	return ToDeviceResponse(dev), nil
}

func (s *Service) UpdateDevice(ctx context.Context, deviceID uuid.UUID, req *UpdateDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid update payload", err)
	}

	if err := s.devices.UpdateLocation(ctx, deviceID, req.Latitude, req.Longitude, req.AlertRadiusKm); err != nil {
		if errors.Is(err, domainDevice.ErrDeviceNotFound) {
			return nil, apperrors.NotFound("device not found")
		}
		return nil, err
	}
	return s.GetDevice(ctx, deviceID)
}

// DeleteDevice is the erasure path: the cascade removes vehicles, push
// tokens and sent alerts in the same statement, so erasure is all or
// nothing.
func (s *Service) DeleteDevice(ctx context.Context, deviceID uuid.UUID) error {
	if err := s.devices.Delete(ctx, deviceID); err != nil {
		if errors.Is(err, domainDevice.ErrDeviceNotFound) {
			return apperrors.NotFound("device not found")
		}
		return err
	}
	logger.Info("Device erased",
		zap.String("device_id", deviceID.String()),
		zap.String("event", "device_erased"),
	)
	return nil
}

// RegisterVehicle validates and normalizes the plate, hashes it, and
// claims it for the device. The raw plate is discarded here; it never
// reaches persistence or logs.
func (s *Service) RegisterVehicle(ctx context.Context, deviceID uuid.UUID, req *RegisterVehicleRequest) (*VehicleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid vehicle payload", err)
	}

	dev, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, apperrors.NotFound("device not found")
	}
	if dev.Banned(time.Now()) {
		return nil, apperrors.Authorization("device is banned")
	}

	result := plate.Validate(req.Plate)
	if !result.IsValid {
		return nil, apperrors.FieldValidation("plate", "license plate does not match any supported format")
	}

	allowed, err := s.limiter.CheckAndRecord(ctx, dev.DeviceIDHash, abuse.IdentifierDevice, abuse.ActionVehicleRegister,
		s.cfg.RateLimit.VehicleRegisterPerMinute, 1)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.RateLimit("too many vehicle registrations, slow down")
	}

	vehicleHash := s.hasher.HashVehicleID(result.Normalized)

	// The QR token is random and unrelated to the plate hash, so a
	// leaked token table cannot be brute-forced against plates.
	qrToken, err := utils.GenerateSecureToken(domainVehicle.QRTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate qr token: %w", err)
	}

	v := &domainVehicle.Vehicle{
		DeviceID:      deviceID,
		VehicleIDHash: vehicleHash,
		QRCodeToken:   qrToken,
		Nickname:      req.Nickname,
		IsActive:      true,
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		if errors.Is(err, domainVehicle.ErrPlateClaimed) {
			return nil, apperrors.Conflict("vehicle already registered")
		}
		return nil, err
	}

	if err := s.devices.Touch(ctx, deviceID, time.Now()); err != nil {
		logger.Error("Failed to refresh device activity", zap.Error(err))
	}

	logger.Info("Vehicle registered",
		zap.String("vehicle_id", v.ID.String()),
		zap.String("device_id", deviceID.String()),
		zap.String("country", result.Country),
		zap.String("event", "vehicle_registered"),
	)

	return ToVehicleResponse(v, result.Country), nil
}

func (s *Service) ListVehicles(ctx context.Context, deviceID uuid.UUID) ([]*VehicleResponse, error) {
	vehicles, err := s.vehicles.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	out := make([]*VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, ToVehicleResponse(v, ""))
	}
	return out, nil
}

// GetVehicle returns a vehicle only to its owning device.
func (s *Service) GetVehicle(ctx context.Context, deviceID, vehicleID uuid.UUID) (*VehicleResponse, error) {
	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil || v.DeviceID != deviceID {
		return nil, apperrors.NotFound("vehicle not found")
	}
	return ToVehicleResponse(v, ""), nil
}

// UpdateVehicle changes the nickname only; the plate hash and QR token
// are immutable once registered.
func (s *Service) UpdateVehicle(ctx context.Context, deviceID, vehicleID uuid.UUID, req *UpdateVehicleRequest) (*VehicleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid vehicle payload", err)
	}
	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil || v.DeviceID != deviceID {
		return nil, apperrors.NotFound("vehicle not found")
	}
	if err := s.vehicles.UpdateNickname(ctx, vehicleID, req.Nickname); err != nil {
		return nil, err
	}
	v.Nickname = req.Nickname
	return ToVehicleResponse(v, ""), nil
}

// DeleteVehicle removes a vehicle the device owns. Its QR token stops
// resolving immediately; alerts already sent keep their own lifetime.
func (s *Service) DeleteVehicle(ctx context.Context, deviceID, vehicleID uuid.UUID) error {
	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil || v.DeviceID != deviceID {
		return apperrors.NotFound("vehicle not found")
	}
	return s.vehicles.Delete(ctx, vehicleID)
}

// VehicleQR returns the scannable URL for a vehicle the device owns.
func (s *Service) VehicleQR(ctx context.Context, deviceID, vehicleID uuid.UUID) (*VehicleQRResponse, error) {
	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil || v.DeviceID != deviceID {
		return nil, apperrors.NotFound("vehicle not found")
	}
	return &VehicleQRResponse{
		QRURL: qr.BuildURL(s.cfg.Security.QRBaseURL, v.QRCodeToken),
		Token: v.QRCodeToken,
	}, nil
}
