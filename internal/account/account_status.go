package account

// Status returns the account's lifecycle status. The explicit account_status
// column wins when present; otherwise the status is derived from is_active
// and the password timestamps:
//
//  1. never activated and no password history -> PENDING_SETUP
//  2. reset requested and not yet completed   -> PASSWORD_RESET_PENDING
//  3. reset completed, still inactive         -> PASSWORD_RESET_COMPLETED
//  4. is_active                               -> ACTIVE
//  5. anything else                           -> INACTIVE
func Status(a *Account) string {
	if a.AccountStatus != nil && *a.AccountStatus != "" {
		return *a.AccountStatus
	}

	if !a.IsActive && a.LastPasswordChangeAt == nil && a.PasswordResetRequestedAt == nil {
		return StatusPendingSetup
	}

	if a.PasswordResetRequestedAt != nil {
		if a.PasswordResetCompletedAt == nil || a.PasswordResetCompletedAt.Before(*a.PasswordResetRequestedAt) {
			return StatusPasswordResetPending
		}
		if !a.IsActive {
			return StatusPasswordResetCompleted
		}
	}

	if a.IsActive {
		return StatusActive
	}

	return StatusInactive
}

func setStatus(a *Account, status string) {
	s := status
	a.AccountStatus = &s
}
