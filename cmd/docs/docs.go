// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/currencies": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "List all currencies",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CurrencyResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Register a currency",
                "parameters": [
                    {"description": "Currency definition", "name": "currency", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateCurrencyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CurrencyResponse"}},
                    "400": {"description": "Invalid definition", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/currencies/reload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Re-reads the currencies file. Definitions replace currencies by id; currencies no longer in the file stay registered. Invalid definitions are reported and skipped.",
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Reload currency definitions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ReloadCurrenciesResponse"}},
                    "400": {"description": "Definitions could not be read", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/currencies/{currencyID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Get a currency by id",
                "parameters": [
                    {"type": "string", "description": "Currency ID", "name": "currencyID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CurrencyResponse"}},
                    "404": {"description": "Currency not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/accounts/{identity}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List an identity's accounts",
                "parameters": [{"$ref": "#/parameters/identity"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListAccountsResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Open an account",
                "parameters": [
                    {"$ref": "#/parameters/identity"},
                    {"description": "Account details", "name": "account", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "Account already existed", "schema": {"$ref": "#/definitions/dto.CreateAccountResponse"}},
                    "201": {"description": "Account opened", "schema": {"$ref": "#/definitions/dto.CreateAccountResponse"}},
                    "404": {"description": "Currency not found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Store unavailable, account opened in memory", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/accounts/{identity}/balance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get a balance",
                "parameters": [{"$ref": "#/parameters/identity"}, {"$ref": "#/parameters/currency"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}},
                    "404": {"description": "Currency not found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Set a balance",
                "parameters": [
                    {"$ref": "#/parameters/identity"},
                    {"description": "Target balance", "name": "balance", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SetBalanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}},
                    "409": {"description": "Target outside the currency bounds", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/accounts/{identity}/deposit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Deposit funds",
                "parameters": [
                    {"$ref": "#/parameters/identity"},
                    {"description": "Amount", "name": "deposit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AmountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}},
                    "400": {"description": "Amount not positive", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Balance ceiling exceeded", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Store unavailable, deposit applied in memory", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/accounts/{identity}/withdraw": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Withdraw funds",
                "parameters": [
                    {"$ref": "#/parameters/identity"},
                    {"description": "Amount", "name": "withdrawal", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AmountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}},
                    "400": {"description": "Amount not positive", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Insufficient funds", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Store unavailable, withdrawal applied in memory", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/accounts/{identity}/reset": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Reset a balance",
                "parameters": [{"$ref": "#/parameters/identity"}, {"$ref": "#/parameters/currency"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}}
                }
            }
        },
        "/accounts/{identity}/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List audit records",
                "parameters": [
                    {"$ref": "#/parameters/identity"},
                    {"type": "integer", "description": "Maximum number of records (1-500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListTransactionsResponse"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/transfers": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Transfer funds",
                "parameters": [
                    {"description": "Transfer details", "name": "transfer", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TransferRequest"}}
                ],
                "responses": {
                    "200": {"description": "Sender balance", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}},
                    "400": {"description": "Invalid amount or self transfer", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Sender account not found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Insufficient funds or receiver ceiling exceeded", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Compensation failed", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Store unavailable, transfer applied in memory", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "parameters": {
        "identity": {"type": "string", "description": "Player identity", "name": "identity", "in": "path", "required": true},
        "currency": {"type": "string", "description": "Currency ID, defaults to the default currency", "name": "currency", "in": "query"}
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "applied": {"type": "boolean"},
                "retryable": {"type": "boolean"}
            }
        },
        "dto.CreateCurrencyRequest": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "symbol": {"type": "string"},
                "format": {"type": "string"},
                "decimalPlaces": {"type": "integer"},
                "isDefault": {"type": "boolean"},
                "initialBalance": {"type": "string"},
                "minBalance": {"type": "string"},
                "maxBalance": {"type": "string"},
                "interestRate": {"type": "string"},
                "allowNegative": {"type": "boolean"},
                "isEnabled": {"type": "boolean"}
            }
        },
        "dto.CurrencyResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "symbol": {"type": "string"},
                "format": {"type": "string"},
                "decimalPlaces": {"type": "integer"},
                "isDefault": {"type": "boolean"},
                "initialBalance": {"type": "string"},
                "minBalance": {"type": "string"},
                "maxBalance": {"type": "string"},
                "interestRate": {"type": "string"},
                "allowNegative": {"type": "boolean"},
                "isEnabled": {"type": "boolean"}
            }
        },
        "dto.ReloadCurrenciesResponse": {
            "type": "object",
            "properties": {
                "currencies": {"type": "array", "items": {"$ref": "#/definitions/dto.CurrencyResponse"}},
                "rejected": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.CreateAccountRequest": {
            "type": "object",
            "properties": {
                "displayName": {"type": "string"},
                "currencyID": {"type": "string"}
            }
        },
        "dto.AccountResponse": {
            "type": "object",
            "properties": {
                "identity": {"type": "string"},
                "displayName": {"type": "string"},
                "currencyID": {"type": "string"},
                "balance": {"type": "string"},
                "formattedBalance": {"type": "string"},
                "createdAt": {"type": "string"},
                "lastTransactionAt": {"type": "string"}
            }
        },
        "dto.CreateAccountResponse": {
            "type": "object",
            "properties": {
                "created": {"type": "boolean"},
                "account": {"$ref": "#/definitions/dto.AccountResponse"}
            }
        },
        "dto.ListAccountsResponse": {
            "type": "object",
            "properties": {
                "identity": {"type": "string"},
                "accounts": {"type": "array", "items": {"$ref": "#/definitions/dto.AccountResponse"}}
            }
        },
        "dto.BalanceResponse": {
            "type": "object",
            "properties": {
                "identity": {"type": "string"},
                "currencyID": {"type": "string"},
                "hasAccount": {"type": "boolean"},
                "balance": {"type": "string"},
                "formattedBalance": {"type": "string"}
            }
        },
        "dto.AmountRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "currencyID": {"type": "string"}
            }
        },
        "dto.SetBalanceRequest": {
            "type": "object",
            "properties": {
                "balance": {"type": "string"},
                "currencyID": {"type": "string"}
            }
        },
        "dto.TransferRequest": {
            "type": "object",
            "required": ["from", "to"],
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"},
                "amount": {"type": "string"},
                "currencyID": {"type": "string"}
            }
        },
        "dto.TransactionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "enum": ["deposit", "withdraw", "transfer"]},
                "fromIdentity": {"type": "string"},
                "toIdentity": {"type": "string"},
                "currencyID": {"type": "string"},
                "amount": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.ListTransactionsResponse": {
            "type": "object",
            "properties": {
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by an operator JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Economy Ledger Admin API",
	Description:      "Operator API for the multi-currency balance ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
