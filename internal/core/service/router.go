package service

import "github.com/kalakrut/portal/internal/core/domain"

// gate describes how a view is reached. A view with no required flags is open.
// When the session holds none of anyOf, the view is denied unless otherwise
// names a fallback view; when it does hold one, granted (if set) replaces the
// requested view.
type gate struct {
	anyOf     []domain.Capability
	granted   domain.View
	otherwise domain.View
}

var openGate = gate{}

var viewTable = map[domain.View]gate{
	domain.ViewDashboard:             openGate,
	domain.ViewSearchResults:         openGate,
	domain.ViewSitemap:               openGate,
	domain.ViewWhitepaper:            openGate,
	domain.ViewRegisterArtist:        openGate,
	domain.ViewBooking:               openGate,
	domain.ViewMarketplace:           openGate,
	domain.ViewServices:              openGate,
	domain.ViewRoster:                openGate,
	domain.ViewForum:                 openGate,
	domain.ViewStudio:                openGate,
	domain.ViewMembership:            openGate,
	domain.ViewMyCircle:              openGate,
	domain.ViewLeadsAndAI:            openGate,
	domain.ViewProfile:               openGate,
	domain.ViewAnnouncementsInternal: openGate,

	domain.ViewGovernance: {anyOf: []domain.Capability{domain.CapGovernDao, domain.CapOnlyManageOwnContracts}},
	domain.ViewContracts:  {anyOf: []domain.Capability{domain.CapManageAllContracts, domain.CapOnlyManageOwnContracts}},
	domain.ViewTreasury:   {anyOf: []domain.Capability{domain.CapAccessTreasury}},
	domain.ViewHrd:        {anyOf: []domain.Capability{domain.CapAccessHr}},
	domain.ViewSystemDocs: {anyOf: []domain.Capability{domain.CapAccessSystemConfig}},

	domain.ViewAdminEmailTemplates: {anyOf: []domain.Capability{domain.CapAdministerPortal}},
	domain.ViewAnalytics:           {anyOf: []domain.Capability{domain.CapAdministerPortal}},
	domain.ViewAdminSupport:        {anyOf: []domain.Capability{domain.CapAdministerPortal}},
	domain.ViewLeads: {
		anyOf:     []domain.Capability{domain.CapAdministerPortal},
		granted:   domain.ViewAdminLeads,
		otherwise: domain.ViewLeadsAndAI,
	},
}

var publicViews = map[domain.View]bool{
	domain.ViewHome:                true,
	domain.ViewAnnouncementsPublic: true,
	domain.ViewRegisterNewUser:     true,
}

// ViewRouter picks the view to render for a session. It never fails: denied
// views come back as domain.ViewAccessDenied.
type ViewRouter struct{}

func NewViewRouter() *ViewRouter {
	return &ViewRouter{}
}

// Resolve decides what to render for view. A nil session is logged out.
func (ViewRouter) Resolve(s *domain.Session, view domain.View) domain.Route {
	if s == nil {
		if publicViews[view] {
			return domain.Route{Requested: view, View: view, Outcome: domain.RoutePublic}
		}
		return domain.Route{Requested: view, View: domain.ViewHome, Outcome: domain.RoutePublic}
	}
	if s.IsBlocked {
		return domain.Route{Requested: view, View: domain.ViewBlocked, Outcome: domain.RouteBlocked}
	}
	return resolveGate(view, s.Capabilities())
}

// ResolveFor routes against a bare capability set, for callers that have no
// session (tooling, previews).
func (ViewRouter) ResolveFor(caps domain.CapabilitySet, view domain.View) domain.Route {
	return resolveGate(view, caps)
}

func resolveGate(view domain.View, caps domain.CapabilitySet) domain.Route {
	g, known := viewTable[view]
	if !known {
		return domain.Route{Requested: view, View: domain.ViewDashboard, Outcome: domain.RouteFallback}
	}
	if len(g.anyOf) == 0 {
		return domain.Route{Requested: view, View: view, Outcome: domain.RouteRendered}
	}
	if caps.HasAny(g.anyOf...) {
		target := view
		if g.granted != "" {
			target = g.granted
		}
		return domain.Route{Requested: view, View: target, Outcome: domain.RouteRendered}
	}
	if g.otherwise != "" {
		return domain.Route{Requested: view, View: g.otherwise, Outcome: domain.RouteFallback}
	}

	missing := make([]string, 0, len(g.anyOf))
	for _, c := range g.anyOf {
		missing = append(missing, c.String())
	}
	return domain.Route{Requested: view, View: domain.ViewAccessDenied, Outcome: domain.RouteDenied, Missing: missing}
}
