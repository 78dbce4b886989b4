// Package iso defines the contract every independent system operator client
// implements, together with the date and location helpers shared by them:
// classifying a requested date against what an ISO publishes, splitting date
// ranges into market days and filtering price records by location.
package iso
