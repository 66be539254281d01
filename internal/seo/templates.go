// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package seo

// The storefront shell is a static document; the React application mounts
// into #root and takes over rendering. Only the literal {metaTags},
// {favicon_url} and {title} placeholders are substituted server-side.
const storefrontTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{metaTags}
<link rel="icon" href="{favicon_url}">
<title>{title}</title>
<link rel="stylesheet" href="/assets/storefront.css">
</head>
<body>
<div id="root"></div>
<script type="module" src="/assets/storefront.js"></script>
</body>
</html>
`

const maintenanceTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{metaTags}
<link rel="icon" href="{favicon_url}">
<title>{title}</title>
</head>
<body>
<main class="maintenance">
<h1>Back soon</h1>
<p>This shop is getting a quick tune-up. Please check back shortly.</p>
</main>
</body>
</html>
`
