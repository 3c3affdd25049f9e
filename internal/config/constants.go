package config

import "time"

// Chains
const (
	PolygonChainID int64 = 137
	MainnetChainID int64 = 1
)

var networkNames = map[int64]string{
	MainnetChainID: "Ethereum",
	PolygonChainID: "Polygon",
}

// ENS
const (
	// ENSRegistryAddress is the ENS registry deployment shared by mainnet and most testnets.
	ENSRegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	ENSNameSuffix      = ".eth"
)

// Price
const (
	FallbackPriceUSD = 0.0
	PricePrecision   = 8 // digits shown on the price line

	// MaxPriceResponseBytes caps how much of a market-data response is read.
	MaxPriceResponseBytes = 1 << 20
)

// Balance
const (
	BalanceErrorMarker      = "Error: Unable to fetch balance"
	ZeroBalanceText         = "0.00"
	BalanceDisplayPrecision = 3
	USDDisplayPrecision     = 2
)

// Server
const (
	ServerReadTimeout    = 30 * time.Second
	ServerWriteTimeout   = 60 * time.Second
	ServerIdleTimeout    = 120 * time.Second
	ServerMaxHeaderBytes = 1 << 20
	ShutdownTimeout      = 15 * time.Second
	MaxRequestBodyBytes  = 64 << 10
	APITimeout           = 30 * time.Second
	HealthCheckTimeout   = 10 * time.Second
)

// Frame
const (
	BasePath         = "/api"
	FrameVersion     = "vNext"
	FrameImageWidth  = 1200
	FrameImageHeight = 630
	FrameAspectRatio = "1.91:1"
	MaxFrameButtons  = 4
)

// Logging
const (
	LogFilePrefix = "sazonframe-"
	LogMaxAgeDays = 30
)
