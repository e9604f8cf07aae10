package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// PaymentMethodInput is the merchant-editable part of a payment method
type PaymentMethodInput struct {
	Name                    string               `json:"name" validate:"required,max=200"`
	Type                    string               `json:"type" validate:"omitempty,oneof=manual bank mobile_money crypto"`
	Countries               []string             `json:"countries" validate:"required,min=1,max=250"`
	InstructionsForCheckout string               `json:"instructions_for_checkout" validate:"max=4000"`
	CustomFields            []entity.CustomField `json:"custom_fields" validate:"max=20,dive"`
	Status                  string               `json:"status" validate:"omitempty,oneof=active inactive"`
	DisplayOrder            int                  `json:"display_order" validate:"min=0"`
}

func (in *PaymentMethodInput) apply(m *model.PaymentMethod) error {
	countries := make(pq.StringArray, 0, len(in.Countries))
	for _, c := range in.Countries {
		code, ok := entity.NormalizeCountry(c)
		if !ok {
			return domainErrors.NewInvalidInputError("payment_method", fmt.Sprintf("unknown country code %q", c), nil)
		}
		countries = append(countries, code)
	}

	m.Name = strings.TrimSpace(in.Name)
	m.Type = in.Type
	if m.Type == "" {
		m.Type = model.PaymentMethodTypeManual
	}
	m.Countries = countries
	m.InstructionsForCheckout = in.InstructionsForCheckout
	fields := in.CustomFields
	if fields == nil {
		fields = []entity.CustomField{}
	}
	m.CustomFields = datatypes.NewJSONSlice(fields)
	if in.Status != "" {
		m.Status = in.Status
	}
	m.DisplayOrder = in.DisplayOrder
	return nil
}

// PaymentMethodService manages the ways a merchant can be paid
type PaymentMethodService struct {
	methods domainRepo.PaymentMethodRepository
	authz   Authorizer
	logger  *zap.Logger
}

func NewPaymentMethodService(methods domainRepo.PaymentMethodRepository, authz Authorizer, logger *zap.Logger) *PaymentMethodService {
	return &PaymentMethodService{methods: methods, authz: authz, logger: logger}
}

func (s *PaymentMethodService) Create(ctx context.Context, actor entity.Actor, in PaymentMethodInput) (*model.PaymentMethod, error) {
	if err := validateInput("payment_method", &in); err != nil {
		return nil, err
	}

	method := &model.PaymentMethod{
		MerchantID: actor.UserID,
		Status:     model.PaymentMethodStatusActive,
	}
	if err := in.apply(method); err != nil {
		return nil, err
	}
	if err := s.methods.Create(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *PaymentMethodService) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.PaymentMethod, error) {
	return s.owned(ctx, actor, entity.ActionRead, id)
}

func (s *PaymentMethodService) List(ctx context.Context, actor entity.Actor) ([]model.PaymentMethod, error) {
	methods, err := s.methods.ListByMerchant(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if methods == nil {
		methods = []model.PaymentMethod{}
	}
	return methods, nil
}

func (s *PaymentMethodService) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, in PaymentMethodInput) (*model.PaymentMethod, error) {
	if err := validateInput("payment_method", &in); err != nil {
		return nil, err
	}

	method, err := s.owned(ctx, actor, entity.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(method); err != nil {
		return nil, err
	}
	if err := s.methods.Update(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *PaymentMethodService) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, entity.ActionDelete, id); err != nil {
		return err
	}
	return s.methods.Delete(ctx, id)
}

func (s *PaymentMethodService) owned(ctx context.Context, actor entity.Actor, action entity.Action, id uuid.UUID) (*model.PaymentMethod, error) {
	method, err := s.methods.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainRepo.ErrNotFound) {
			return nil, domainErrors.NewNotFoundError("payment_method", id.String())
		}
		return nil, err
	}
	resource := entity.Resource{Type: entity.ResourcePaymentMethod, ID: id.String(), OwnerID: method.MerchantID}
	if !s.authz.CurrentUserCan(ctx, actor, action, resource) {
		return nil, domainErrors.NewNotFoundError("payment_method", id.String())
	}
	return method, nil
}
