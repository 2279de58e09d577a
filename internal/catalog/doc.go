// Package catalog talks to the storefront inventory HTTP API.
package catalog
