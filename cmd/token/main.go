// token emite un JWT firmado con JWT_SECRET para operar las rutas de escritura del kardex.
//
// Uso: go run ./cmd/token <user_id> [role]
// role por defecto: operator (admin, operator, viewer).
// Lee JWT_SECRET, JWT_ISSUER y JWT_EXPIRATION_MINUTES del entorno o de .env.
package main

import (
	"fmt"
	"os"

	"github.com/rfranzoia/cloud-ready-stock/pkg/config"
	"github.com/rfranzoia/cloud-ready-stock/pkg/jwt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: token <user_id> [admin|operator|viewer]")
		os.Exit(2)
	}
	userID := os.Args[1]
	role := jwt.RoleOperator
	if len(os.Args) > 2 {
		role = os.Args[2]
	}
	switch role {
	case jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer:
	default:
		fmt.Fprintf(os.Stderr, "Rol desconocido: %q\n", role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está definido")
		os.Exit(1)
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
