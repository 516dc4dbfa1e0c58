// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys are the English strings.
var translations = map[string]map[string]string{
	"pt": {
		"Home":                       "Início",
		"Latest articles":            "Últimos artigos",
		"Categories":                 "Categorias",
		"Subcategories":              "Subcategorias",
		"No articles yet.":           "Ainda não há artigos.",
		"Read more":                  "Leia mais",
		"Published on %s":            "Publicado em %s",
		"%d articles":                "%d artigos",
		"Page not found":             "Página não encontrada",
		"Level %d":                   "Nível %d",
		"Sign in":                    "Entrar",
		"Sign out":                   "Sair",
		"Email":                      "E-mail",
		"Password":                   "Senha",
		"Invalid email or password.": "E-mail ou senha inválidos.",
	},
	"es": {
		"Home":                       "Inicio",
		"Latest articles":            "Últimos artículos",
		"Categories":                 "Categorías",
		"Subcategories":              "Subcategorías",
		"No articles yet.":           "Todavía no hay artículos.",
		"Read more":                  "Leer más",
		"Published on %s":            "Publicado el %s",
		"%d articles":                "%d artículos",
		"Page not found":             "Página no encontrada",
		"Level %d":                   "Nivel %d",
		"Sign in":                    "Iniciar sesión",
		"Sign out":                   "Cerrar sesión",
		"Email":                      "Correo electrónico",
		"Password":                   "Contraseña",
		"Invalid email or password.": "Correo o contraseña no válidos.",
	},
}

var messages = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, msgs := range translations {
		tag := language.Make(code)
		for key, msg := range msgs {
			// Keys are static; SetString only fails on malformed tags.
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// Printer returns a message printer for a locale code. Strings without a
// translation print as their English key.
func Printer(code string) *message.Printer {
	return message.NewPrinter(language.Make(code), message.Catalog(messages))
}

// T translates key for a locale code, formatting args like fmt.Sprintf.
func T(code, key string, args ...any) string {
	return Printer(code).Sprintf(key, args...)
}
