package main

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/database"
)

//go:embed demo_seed.yaml
var demoSeed []byte

type seedFile struct {
	Links   []seedLink   `yaml:"links"`
	Methods []seedMethod `yaml:"methods"`
}

type seedLink struct {
	Slug          string   `yaml:"slug"`
	Title         string   `yaml:"title"`
	AmountType    string   `yaml:"amount_type"`
	Amount        string   `yaml:"amount"`
	MinAmount     string   `yaml:"min_amount"`
	MaxAmount     string   `yaml:"max_amount"`
	Currency      string   `yaml:"currency"`
	Countries     []string `yaml:"countries"`
	Status        string   `yaml:"status"`
	Heading       string   `yaml:"heading"`
	ReviewMessage string   `yaml:"review_message"`
}

type seedMethod struct {
	Name         string               `yaml:"name"`
	Type         string               `yaml:"type"`
	Countries    []string             `yaml:"countries"`
	Instructions string               `yaml:"instructions"`
	CustomFields []entity.CustomField `yaml:"custom_fields"`
	DisplayOrder int                  `yaml:"display_order"`
}

func seedDemoCmd() *cobra.Command {
	var (
		merchant string
		file     string
	)

	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Create demo checkout links and payment methods for a merchant",
		Long: `Create demo checkout links and payment methods owned by --merchant.

Without --file the built-in seed is used: the "test-cameroon-payment" link
(fixed 5000 XAF, Cameroon) and a Cameroon mobile money method. Links whose
slug already exists are skipped.

Examples:
  pxvctl seed-demo --merchant 6f1c2d1e-7b8a-4c3d-9e0f-112233445566
  pxvctl seed-demo --merchant <uuid> --file configs/example/seed.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			merchantID, err := uuid.Parse(merchant)
			if err != nil {
				return fmt.Errorf("--merchant must be a user id: %w", err)
			}

			data := demoSeed
			if file != "" {
				if data, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("read seed file: %w", err)
				}
			}
			seed, err := parseSeed(data)
			if err != nil {
				return err
			}

			e, closeFn, err := openEnv()
			if err != nil {
				return err
			}
			defer closeFn()

			repos := database.NewRepositories(e.db, e.logger)
			return runSeed(cmd.Context(), repos.CheckoutLink, repos.PaymentMethod, merchantID, seed, cmd.OutOrStdout(), e.logger)
		},
	}

	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant user id that owns the seeded data")
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file (defaults to the built-in demo seed)")
	_ = cmd.MarkFlagRequired("merchant")

	return cmd
}

func parseSeed(data []byte) (*seedFile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("seed file is empty")
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("unmarshal seed yaml: %w", err)
	}
	return &seed, nil
}

func optionalDecimal(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &d, nil
}

// toModel builds a validated link owned by merchantID.
func (s seedLink) toModel(merchantID uuid.UUID) (*model.CheckoutLink, error) {
	amount, err := optionalDecimal("amount", s.Amount)
	if err != nil {
		return nil, err
	}
	minAmount, err := optionalDecimal("min_amount", s.MinAmount)
	if err != nil {
		return nil, err
	}
	maxAmount, err := optionalDecimal("max_amount", s.MaxAmount)
	if err != nil {
		return nil, err
	}

	status := entity.LinkStatus(s.Status)
	if status == "" {
		status = entity.LinkStatusActive
	}

	link := &model.CheckoutLink{
		ID:                   uuid.New(),
		MerchantID:           merchantID,
		Slug:                 strings.ToLower(s.Slug),
		Title:                s.Title,
		AmountType:           entity.AmountType(s.AmountType),
		Amount:               amount,
		MinAmount:            minAmount,
		MaxAmount:            maxAmount,
		Currency:             strings.ToUpper(s.Currency),
		ActiveCountryCodes:   pq.StringArray(append([]string(nil), s.Countries...)),
		Status:               status,
		CheckoutPageHeading:  s.Heading,
		PaymentReviewMessage: s.ReviewMessage,
	}
	if err := link.Validate(); err != nil {
		return nil, err
	}
	return link, nil
}

func (s seedMethod) toModel(merchantID uuid.UUID) (*model.PaymentMethod, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, fmt.Errorf("payment method name is required")
	}

	countries := make(pq.StringArray, 0, len(s.Countries))
	for _, c := range s.Countries {
		code, ok := entity.NormalizeCountry(c)
		if !ok {
			return nil, fmt.Errorf("payment method %q: unknown country code %q", s.Name, c)
		}
		countries = append(countries, code)
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("payment method %q needs at least one country", s.Name)
	}

	typ := s.Type
	if typ == "" {
		typ = model.PaymentMethodTypeManual
	}
	fields := s.CustomFields
	if fields == nil {
		fields = []entity.CustomField{}
	}

	return &model.PaymentMethod{
		ID:                      uuid.New(),
		MerchantID:              merchantID,
		Name:                    s.Name,
		Type:                    typ,
		Countries:               countries,
		InstructionsForCheckout: s.Instructions,
		CustomFields:            datatypes.NewJSONSlice(fields),
		Status:                  model.PaymentMethodStatusActive,
		DisplayOrder:            s.DisplayOrder,
	}, nil
}

func runSeed(
	ctx context.Context,
	links domainRepo.CheckoutLinkRepository,
	methods domainRepo.PaymentMethodRepository,
	merchantID uuid.UUID,
	seed *seedFile,
	out io.Writer,
	logger *zap.Logger,
) error {
	now := time.Now()

	for i, entry := range seed.Links {
		link, err := entry.toModel(merchantID)
		if err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}

		exists, err := links.SlugExists(ctx, link.Slug)
		if err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
		if exists {
			fmt.Fprintf(out, "skip   link %s (slug exists)\n", link.Slug)
			continue
		}

		link.CreatedAt, link.UpdatedAt = now, now
		if err := links.Create(ctx, link); err != nil {
			return fmt.Errorf("links[%d]: create: %w", i, err)
		}
		logger.Info("Seeded checkout link",
			zap.String("slug", link.Slug),
			zap.String("merchant_id", merchantID.String()))
		fmt.Fprintf(out, "create link %s (%s)\n", link.Slug, link.ID)
	}

	for i, entry := range seed.Methods {
		method, err := entry.toModel(merchantID)
		if err != nil {
			return fmt.Errorf("methods[%d]: %w", i, err)
		}

		method.CreatedAt, method.UpdatedAt = now, now
		if err := methods.Create(ctx, method); err != nil {
			return fmt.Errorf("methods[%d]: create: %w", i, err)
		}
		logger.Info("Seeded payment method",
			zap.String("name", method.Name),
			zap.String("merchant_id", merchantID.String()))
		fmt.Fprintf(out, "create method %q (%s)\n", method.Name, method.ID)
	}
	return nil
}
