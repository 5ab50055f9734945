package htmldoc

// uaCSS is the user-agent stylesheet applied beneath author styles.
const uaCSS = `
[hidden], area, base, datalist { display: none }
dialog[open] { display: block }
h1 { font-size: 2em; font-weight: bold }
h2 { font-size: 1.5em; font-weight: bold }
h3 { font-size: 1.17em; font-weight: bold }
h4 { font-size: 1em; font-weight: bold }
h5 { font-size: 0.83em; font-weight: bold }
h6 { font-size: 0.67em; font-weight: bold }
b, strong, th { font-weight: bold }
small { font-size: smaller }
big { font-size: larger }
a[href] { color: #0000ee }
mark { background-color: yellow; color: black }
button, input, select, textarea { font-size: 13.333px }
a[href]:focus-visible, area[href]:focus-visible, button:focus-visible, input:focus-visible,
select:focus-visible, textarea:focus-visible, summary:focus-visible, iframe:focus-visible,
[tabindex]:focus-visible, [contenteditable]:focus-visible {
  outline: 2px solid #005fcc
}
`
