// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - WaitlistSignupRequest: email, turnstileToken, referredBy
  - WaitlistLookupRequest: email
  - ErrorAlertRequest: error, context, url, userAgent, timestamp
  - ShareRequest: platform
  - SaveRestaurantRequest: establishment_id, establishment_name, ...
  - RegisterPushTokenRequest: token, platform
  - ConversionRequest: conversion_type

# Response Types

  - WaitlistSignupResponse, WaitlistLookupResponse
  - SearchResponse, ShareResponse, ViolationStatsResponse, TickerResponse
  - SavedListResponse, HeadlineResponse
  - AlertRunSummary: outcome of one inspection alert run
  - MessageResponse, ErrorResponse

# Domain Types

  - InspectionRecord: one DineSafe feed row (one infraction, or none)
  - Inspection, Infraction: feed rows grouped by inspection
  - Report: scored, translated view of an establishment
  - Finding: plain-language infraction summary
  - SavedRestaurant, PushToken, NotificationLog, WaitlistEntry, TickerItem

# Constants

Establishment status:

	StatusPass            = "Pass"
	StatusConditionalPass = "Conditional Pass"
	StatusClosed          = "Closed"

Severity tiers:

	SeverityCrucial, SeveritySignificant, SeverityMinor

Platforms:

	PlatformIOS     = "ios"
	PlatformAndroid = "android"

Share platforms:

	ShareTwitter, ShareWhatsApp, ShareCopy
*/
package models
