package render

const templateText = `
{{define "balance"}}<span class="token-balance">{{tokens .}} Tokens</span>{{end}}

{{define "transactions"}}{{if not .}}<tr class="empty-state"><td colspan="4">No transactions yet.</td></tr>{{else}}{{range .}}<tr>
<td>{{isoDate .Date}}</td>
<td>{{.Description}}</td>
<td class="{{if gt .Amount 0}}transaction-positive{{else}}transaction-negative{{end}}">{{signed .Amount}} Tokens</td>
<td>{{tokens .Balance}}</td>
</tr>
{{end}}{{end}}{{end}}

{{define "updates"}}{{if not .}}<div class="empty-state">
<h3>No updates yet</h3>
<p>Share your first farm update to keep investors informed.</p>
</div>{{else}}{{range .}}<div class="update-card" data-id="{{.ID}}">
<div class="update-header"><div class="update-date">{{longDate .Date}}</div><div class="update-day">Day {{.Day}}</div></div>
<div class="update-content">
<div class="update-title">{{.Title}}</div>
<div class="update-description">{{.Description}}</div>
{{with .Image}}<img src="{{imageURL .}}" alt="Farm update" class="update-image">{{end}}
</div>
</div>
{{end}}{{end}}{{end}}

{{define "funding_list"}}{{if not .}}<div class="empty-state">No funding requests yet.</div>{{else}}{{range .}}<div class="funding-row">
<div>
<div class="funding-amount">{{.Amount}} Tokens</div>
<div class="funding-meta">{{purposes .}} &bull; {{.Description}}</div>
</div>
<div class="funding-status status-{{.Status}}">{{.Status}}</div>
</div>
{{end}}{{end}}{{end}}

{{define "funding_summary"}}<div class="funding-summary">
<div id="total-requested">{{.TotalRequested}}</div>
<div id="available-funds">{{.AvailableFunds}}</div>
<div id="additional-needed">{{.AdditionalNeeded}}</div>
</div>{{end}}

{{define "purchase_preview"}}<div class="purchase-details">
<p>You are about to purchase:</p>
<p class="purchase-item">{{.Item.Name}}</p>
<p>Price: <span class="purchase-price">{{tokens .Item.Price}} Tokens</span></p>
<p>Your current balance: <span>{{tokens .Balance}} Tokens</span></p>
<p>Balance after purchase: <span>{{tokens .BalanceAfter}} Tokens</span></p>
<button id="confirm-purchase"{{if not .CanConfirm}} disabled class="disabled"{{end}}>Confirm Purchase</button>
</div>{{end}}

{{define "catalog"}}{{if not .}}<div class="empty-state">No products in this category.</div>{{else}}{{range .}}<div class="product-card" data-category="{{.Category}}">
<div class="product-name">{{.Name}}</div>
<div class="product-price">{{tokens .Price}} Tokens</div>
<button class="buy-button" data-item="{{.Name}}" data-price="{{.Price}}">Buy</button>
</div>
{{end}}{{end}}{{end}}

{{define "crop_result"}}<div id="result">Recommended crop: {{.}}</div>{{end}}

{{define "error_panel"}}<div id="error" class="error">{{.}}</div>{{end}}

{{define "disease"}}<ul>{{range .Rows}}
<li class="prediction-item"><span>{{.Label}}</span> <strong>{{.Percent}}%</strong></li>{{end}}
</ul>{{with .NutrientStatus}}
<p class="nutrient-status">Nutrient status: {{.}}</p>{{end}}{{end}}

{{define "profile"}}<div class="farmer-card">
<div class="user-avatar">{{.Initial}}</div>
<div id="farmer_name">{{.Name}}</div>
<div id="farmer_location">{{.Location}}</div>
<div id="farmer_crop">{{.Crop}}</div>
<div id="farmer_land">{{.Land}}</div>
</div>{{end}}

{{define "images"}}{{if not .}}<div id="farm-photo-empty" class="empty-state">No farm photos yet.</div>{{else}}<div id="farm-photo-grid">{{range .}}
<div class="farm-photo"><img src="{{.}}" alt="Farm photo"></div>{{end}}
</div>{{end}}{{end}}

{{define "cycle"}}<div class="season">
<div id="season_phase">{{.Phase}}</div>
<div id="season_days">{{.Days}}</div>
<progress id="season_progress" max="100" value="{{.Progress}}"></progress>
{{if .ShowStart}}<a id="startCycleBtn" href="start-crop-cycle.html">Start Crop Cycle</a>{{end}}
</div>{{end}}
`
