// token emite un JWT firmado con JWT_SECRET para llamar a la API.
//
// Uso: go run ./cmd/token -user u-1 -email bodega@example.com -role storekeeper
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/warehouse-ledger/pkg/config"
	"github.com/jhoicas/warehouse-ledger/pkg/jwt"
)

func main() {
	userID := flag.String("user", "admin", "user id (claim user_id)")
	email := flag.String("email", "", "email del actor")
	role := flag.String("role", "admin", "admin | storekeeper | viewer")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *email, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
