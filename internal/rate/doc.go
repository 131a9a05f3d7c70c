// Package rate enforces failed-attempt budgets for login and recovery OTP
// flows using Redis counters. Counters expire after the configured
// cooldown; successful authentication resets them early.
package rate
