package domain

// View identifies a top-level screen. Navigation replaces the current view;
// there is no stack.
type View string

const (
	ViewDashboard             View = "dashboard"
	ViewSearchResults         View = "search_results"
	ViewSitemap               View = "sitemap"
	ViewWhitepaper            View = "whitepaper"
	ViewRegisterArtist        View = "register_artist"
	ViewBooking               View = "booking"
	ViewMarketplace           View = "marketplace"
	ViewServices              View = "services"
	ViewRoster                View = "roster"
	ViewForum                 View = "forum"
	ViewStudio                View = "studio"
	ViewMembership            View = "membership"
	ViewMyCircle              View = "my_circle"
	ViewLeadsAndAI            View = "leads_and_ai"
	ViewProfile               View = "profile"
	ViewAnnouncementsInternal View = "announcements_internal"

	ViewGovernance          View = "governance"
	ViewContracts           View = "contracts"
	ViewTreasury            View = "treasury"
	ViewHrd                 View = "hrd"
	ViewSystemDocs          View = "system_docs"
	ViewAdminEmailTemplates View = "admin_email_templates"
	ViewAnalytics           View = "analytics"
	ViewAdminSupport        View = "admin_support"
	ViewLeads               View = "leads"
	ViewAdminLeads          View = "admin_leads"

	// Reachable without a session.
	ViewHome                View = "home"
	ViewAnnouncementsPublic View = "announcements_public"
	ViewRegisterNewUser     View = "register_new_user"

	// Terminal placeholders produced by the router.
	ViewBlocked      View = "blocked"
	ViewAccessDenied View = "access_denied"
)

// RouteOutcome explains how the router arrived at a view.
type RouteOutcome string

const (
	RouteRendered RouteOutcome = "rendered"
	RouteFallback RouteOutcome = "fallback"
	RouteDenied   RouteOutcome = "denied"
	RouteBlocked  RouteOutcome = "blocked"
	RoutePublic   RouteOutcome = "public"
)

// Route is the router's decision for a requested view.
type Route struct {
	Requested View         `json:"requested"`
	View      View         `json:"view"`
	Outcome   RouteOutcome `json:"outcome"`
	// Missing lists the flags that would have granted a denied view.
	Missing []string `json:"missing,omitempty"`
}
