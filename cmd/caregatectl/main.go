package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/caregate/internal/config"
	"github.com/dropDatabas3/caregate/internal/domain/repository"
	"github.com/dropDatabas3/caregate/internal/security/password"
	"github.com/dropDatabas3/caregate/internal/security/token"
	"github.com/dropDatabas3/caregate/internal/store/pg"
	"github.com/dropDatabas3/caregate/internal/support"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:           "caregatectl",
		Short:         "Herramientas de administración de caregate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "ruta del archivo de configuración")

	root.AddCommand(
		newSuperadminCmd(&cfgPath),
		newSupportAccessCmd(&cfgPath),
		newTokenCmd(&cfgPath),
		newSessionCmd(&cfgPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "caregatectl:", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfgPath string) (*config.Config, *pg.Store, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage.DSN == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL / storage.dsn es requerido")
	}
	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	return cfg, store, nil
}

// ===== superadmin =====

func newSuperadminCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "superadmin", Short: "Gestión de cuentas superadmin"}

	var email, plain, tenant string
	create := &cobra.Command{
		Use:   "create",
		Short: "Crea un superadmin (hash argon2id)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || plain == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			if err := password.ValidateOperator(plain); err != nil {
				return err
			}

			ctx := cmd.Context()
			_, store, err := openStore(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()

			hash, err := password.Hash(password.Default, plain)
			if err != nil {
				return err
			}
			u := &repository.User{
				ID:           uuid.NewString(),
				TenantID:     tenant,
				Email:        strings.ToLower(strings.TrimSpace(email)),
				Role:         "super_admin",
				PasswordHash: hash,
			}
			if err := store.Users().Create(ctx, u); err != nil {
				return err
			}
			fmt.Printf("superadmin creado: id=%s email=%s\n", u.ID, u.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "email del superadmin")
	create.Flags().StringVar(&plain, "password", "", "password en claro (se hashea)")
	create.Flags().StringVar(&tenant, "tenant", "", "tenant del superadmin (vacío = plataforma)")

	cmd.AddCommand(create)
	return cmd
}

// ===== support-access =====

func newSupportAccessCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "support-access", Short: "Solicitudes de support access"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista solicitudes con su estado efectivo",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, store, err := openStore(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()

			reqs, err := store.SupportRequests().List(ctx, limit)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tREQUESTER\tTENANT\tUSER\tSTATUS\tEXPIRES\tPURPOSE")
			for i := range reqs {
				r := &reqs[i]
				user := "-"
				if r.TargetUserID != nil {
					user = *r.TargetUserID
				}
				expires := "-"
				if r.ExpiresAt != nil {
					expires = r.ExpiresAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.RequesterID, r.TargetTenantID, user,
					support.EffectiveStatus(r, now), expires, r.Purpose,
				)
			}
			return w.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "máximo de solicitudes a listar")

	cmd.AddCommand(list)
	return cmd
}

// ===== token =====

func newTokenCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Service tokens"}

	var sub, email, role, tenant, svc string
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Emite un service token HS256 (requiere SERVICE_TOKEN_SECRET)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			secret := config.ServiceTokenSecret()
			if len(secret) == 0 {
				return fmt.Errorf("SERVICE_TOKEN_SECRET no está configurado")
			}

			svcTok := token.New(secret, cfg.Auth.ServiceToken.Issuer, cfg.Auth.ServiceToken.Audience)
			if ttl > 0 {
				svcTok.TokenTTL = ttl
			}
			raw, err := svcTok.Issue(token.Claims{
				Subject:  sub,
				Email:    email,
				Role:     role,
				TenantID: tenant,
				Service:  svc,
			})
			if err != nil {
				return err
			}
			fmt.Println(raw)
			return nil
		},
	}
	issue.Flags().StringVar(&sub, "sub", "", "user ID en cuyo nombre actúa el token")
	issue.Flags().StringVar(&email, "email", "", "email del usuario")
	issue.Flags().StringVar(&role, "role", "", "rol del usuario")
	issue.Flags().StringVar(&tenant, "tenant", "", "tenant del usuario")
	issue.Flags().StringVar(&svc, "service", "caregatectl", "nombre del servicio emisor")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "TTL del token (default: config)")

	cmd.AddCommand(issue)
	return cmd
}

// ===== session =====

func newSessionCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Sesiones de portal"}

	var userID string
	var ttl time.Duration
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Crea una sesión y imprime el valor de cookie (dev/test)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(userID) == "" {
				return fmt.Errorf("--user es requerido")
			}

			ctx := cmd.Context()
			cfg, store, err := openStore(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if ttl <= 0 {
				d, err := config.MustDuration("auth.session.ttl", cfg.Auth.Session.TTL)
				if err != nil {
					return err
				}
				ttl = d
			}

			raw, err := token.GenerateOpaqueToken(32)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			sess := &repository.Session{
				ID:            uuid.NewString(),
				UserID:        userID,
				SessionIDHash: token.SHA256Hex(raw),
				CreatedAt:     now,
				LastActivity:  now,
				ExpiresAt:     now.Add(ttl),
			}
			if err := store.Sessions().Create(ctx, sess); err != nil {
				return err
			}
			fmt.Printf("cookie %s=%s (expira %s)\n", cfg.Auth.Session.CookieName, raw, sess.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	seed.Flags().StringVar(&userID, "user", "", "user ID dueño de la sesión")
	seed.Flags().DurationVar(&ttl, "ttl", 0, "TTL de la sesión (default: config)")

	cmd.AddCommand(seed)

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Elimina sesiones expiradas o revocadas",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, store, err := openStore(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Sessions().DeleteExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d sesiones eliminadas\n", n)
			return nil
		},
	}
	cmd.AddCommand(purge)

	return cmd
}
