package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kataribe-dev/kataribe/pkg/cli/config"
	"github.com/kataribe-dev/kataribe/pkg/domain/model"
	"github.com/kataribe-dev/kataribe/pkg/domain/types"
	"github.com/kataribe-dev/kataribe/pkg/usecase"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

func cmdSeed() *cli.Command {
	var configPath string
	var dryRun bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Onboarding configuration file (TOML)",
			Required:    true,
			Sources:     cli.EnvVars("KATARIBE_CONFIG"),
			Destination: &configPath,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Validate the configuration without writing",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Onboard tenants and global personality templates from a configuration file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadAppConfig(configPath)
			if err != nil {
				color.Red("✗ %s", configPath)
				return err
			}
			color.Green("✓ %s", configPath)

			if dryRun {
				fmt.Printf("would seed %d tenant(s) and %d personality template(s)\n",
					len(cfg.Tenants), len(cfg.Personalities))
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo)

			for _, p := range cfg.Personalities {
				if _, err := uc.Personality.Create(ctx, &model.PersonalityTemplate{
					ID:           types.NewTemplateID(),
					TenantID:     types.GlobalTenant,
					Mode:         p.Mode,
					SystemPrompt: p.Prompt,
					Active:       true,
					IsDefault:    p.Default,
				}); err != nil {
					color.Red("✗ personality %s", p.Mode)
					return goerr.Wrap(err, "failed to seed personality template", goerr.V("mode", p.Mode))
				}
				color.Green("✓ personality %s", p.Mode)
			}

			for _, t := range cfg.Tenants {
				if err := seedTenant(ctx, uc, &t); err != nil {
					color.Red("✗ tenant %s", t.ID)
					return goerr.Wrap(err, "failed to seed tenant", goerr.V("tenantID", t.ID))
				}
				color.Green("✓ tenant %s", t.ID)
			}

			return nil
		},
	}
}

func seedTenant(ctx context.Context, uc *usecase.UseCases, t *config.Tenant) error {
	tenantID := types.TenantID(t.ID)

	settings := []*model.TenantSetting{
		{
			TenantID: tenantID,
			Key:      types.SettingKeyOwnerName,
			Value:    t.Owner.Name,
			Kind:     types.SettingKindString,
			Category: "owner",
		},
	}
	if t.Owner.Role != "" {
		settings = append(settings, &model.TenantSetting{
			TenantID: tenantID,
			Key:      types.SettingKeyOwnerRole,
			Value:    t.Owner.Role,
			Kind:     types.SettingKindString,
			Category: "owner",
		})
	}

	for _, s := range t.Settings {
		kind := types.SettingKind(s.Kind)
		if s.Kind == "" {
			kind = types.SettingKindString
		}
		settings = append(settings, &model.TenantSetting{
			TenantID: tenantID,
			Key:      s.Key,
			Value:    s.Value,
			Kind:     kind,
			Category: s.Category,
		})
	}

	for _, setting := range settings {
		if err := uc.Settings.Put(ctx, tenantID, setting); err != nil {
			return err
		}
	}

	return nil
}
