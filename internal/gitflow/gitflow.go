// Package gitflow classifies branch names into release tiers.
package gitflow

// ProductionBranches are the branch names classified as production-tier.
var ProductionBranches = []string{"production", "main", "master"}

// IsProductionBranch reports whether a branch deploys to production.
func IsProductionBranch(branchName string) bool {
	for _, name := range ProductionBranches {
		if branchName == name {
			return true
		}
	}
	return false
}

// IsStagingBranch reports whether a branch deploys to staging.
func IsStagingBranch(branchName string) bool {
	return branchName == "release" || branchName == "staging"
}

// IsDevelopmentBranch reports whether a branch is a development integration branch.
func IsDevelopmentBranch(branchName string) bool {
	return branchName == "develop" || branchName == "development"
}

// IsRegularRelease reports whether the base/head pair is a standard release
// promotion: staging into production, or development into staging.
func IsRegularRelease(baseBranchName, headBranchName string) bool {
	if IsProductionBranch(baseBranchName) && IsStagingBranch(headBranchName) {
		return true
	}

	if IsStagingBranch(baseBranchName) && IsDevelopmentBranch(headBranchName) {
		return true
	}

	return false
}
